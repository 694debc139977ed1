// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package reref

import (
	"fmt"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of a referencing call.
type Result struct {
	Tensor   *Tensor                  // Referenced samples
	Names    []string                 // Channel names, matching the rows of Tensor
	Warnings []DegenerateGroupWarning // Shafts that produced no channels
}

// Engine applies referencing schemes. The zero value is not usable; use New.
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger      *zap.Logger
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency bounds the number of shafts processed in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:      zap.NewNop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyReference applies scheme with a default Engine.
func ApplyReference(scheme Scheme, t *Tensor, names []string, params Params) (*Result, error) {
	return New().Apply(scheme, t, names, params)
}

// Apply re-references t, whose channels are named by names, with the given
// scheme. The input tensor and names are not modified.
//
// CAR and Monopolar keep the channel order. ESR, Bipolar, Laplacian and GWR
// emit channels shaft by shaft in GroupChannels order; GWR emits the gray
// matter channels before the white matter channels. Channels passed through
// with Params.PassthroughUtility always come last.
func (e *Engine) Apply(scheme Scheme, t *Tensor, names []string, params Params) (*Result, error) {
	if err := validateParams(scheme, params); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &ShapeError{Reason: "nil tensor"}
	}
	if _, channels, _ := t.Dims(); channels != len(names) {
		return nil, &ShapeError{Reason: fmt.Sprintf("tensor has %d channels, %d names given", channels, len(names))}
	}

	contacts, utility := allIndices(len(names)), []int(nil)
	if params.PassthroughUtility {
		contacts, utility = SplitUtility(names)
	}

	var g *Grouping
	if scheme.grouped() {
		var err error
		if g, err = groupIndices(names, contacts); err != nil {
			return nil, err
		}
		g = e.exclude(g, params.ExcludeShafts)
	}

	var (
		blocks   []block
		warnings []DegenerateGroupWarning
	)
	switch scheme {
	case CAR:
		blocks = []block{averaged(t, names, contacts, contacts)}
	case Monopolar:
		refs, err := referenceIndices(names, params.References)
		if err != nil {
			return nil, err
		}
		blocks = []block{averaged(t, names, contacts, refs)}
	case ESR:
		blocks = e.mapShafts(g.Shafts, func(s Shaft) block { return esrShaft(t, names, s) })
	case Bipolar:
		warnings = e.degenerate(scheme, g, 2)
		blocks = e.mapShafts(g.Shafts, func(s Shaft) block { return bipolarShaft(t, s) })
	case Laplacian:
		warnings = e.degenerate(scheme, g, 3)
		blocks = e.mapShafts(g.Shafts, func(s Shaft) block { return laplacianShaft(t, s) })
	case GWR:
		labels, err := classifyAll(params.Classifier, g.Channels())
		if err != nil {
			return nil, err
		}
		blocks = tissueBlocks(t, names, g, labels)
	}

	if len(utility) > 0 {
		blocks = append(blocks, copied(t, names, utility))
	}

	out, outNames := assemble(t, blocks)

	e.logger.Debug("Applied reference",
		zap.Stringer("scheme", scheme),
		zap.Stringer("mode", t.Mode()),
		zap.Int("channels_in", len(names)),
		zap.Int("channels_out", len(outNames)),
		zap.Int("passthrough", len(utility)))

	return &Result{Tensor: out, Names: outNames, Warnings: warnings}, nil
}

func validateParams(scheme Scheme, params Params) error {
	switch {
	case !scheme.Valid():
		return &SchemeParameterError{Scheme: scheme, Param: strconv.Itoa(int(scheme)), Reason: "unknown reference scheme"}
	case scheme == Monopolar && len(params.References) == 0:
		return &SchemeParameterError{Scheme: scheme, Param: "references", Reason: "at least one reference channel is required"}
	case scheme == GWR && params.Classifier == nil:
		return &SchemeParameterError{Scheme: scheme, Param: "classifier", Reason: "a tissue classifier is required"}
	}
	return nil
}

// referenceIndices resolves Monopolar reference names, ignoring repeats.
func referenceIndices(names, refs []string) ([]int, error) {
	pos := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := pos[name]; !ok {
			pos[name] = i
		}
	}

	seen := make(map[int]struct{}, len(refs))
	idx := make([]int, 0, len(refs))
	for _, ref := range refs {
		i, ok := pos[ref]
		if !ok {
			return nil, &SchemeParameterError{Scheme: Monopolar, Param: ref, Reason: "reference channel not found"}
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		idx = append(idx, i)
	}
	return idx, nil
}

// exclude drops the shafts named in labels.
func (e *Engine) exclude(g *Grouping, labels []string) *Grouping {
	if len(labels) == 0 {
		return g
	}

	drop := make(map[string]bool, len(labels))
	for _, l := range labels {
		drop[l] = true
	}

	kept := &Grouping{Shafts: make([]Shaft, 0, len(g.Shafts))}
	for _, s := range g.Shafts {
		if drop[s.Label] {
			e.logger.Debug("Excluding shaft", zap.String("shaft", s.Label), zap.Int("contacts", len(s.Channels)))
			continue
		}
		kept.Shafts = append(kept.Shafts, s)
	}
	return kept
}

// degenerate reports shafts with fewer than required contacts.
func (e *Engine) degenerate(scheme Scheme, g *Grouping, required int) []DegenerateGroupWarning {
	var warnings []DegenerateGroupWarning
	for _, s := range g.Shafts {
		if len(s.Channels) >= required {
			continue
		}
		w := DegenerateGroupWarning{Scheme: scheme, Shaft: s.Label, Contacts: len(s.Channels), Required: required}
		e.logger.Warn("Degenerate shaft",
			zap.Stringer("scheme", scheme),
			zap.String("shaft", s.Label),
			zap.Int("contacts", w.Contacts),
			zap.Int("required", required))
		warnings = append(warnings, w)
	}
	return warnings
}

// mapShafts runs fn over the shafts in parallel and returns the blocks in
// shaft order.
func (e *Engine) mapShafts(shafts []Shaft, fn func(Shaft) block) []block {
	blocks := make([]block, len(shafts))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, s := range shafts {
		i, s := i, s
		g.Go(func() error {
			blocks[i] = fn(s)
			return nil
		})
	}
	_ = g.Wait() // fn cannot fail

	return blocks
}

// assemble concatenates blocks into a fresh tensor of the input's mode.
func assemble(t *Tensor, blocks []block) (*Tensor, []string) {
	trials, _, samples := t.Dims()

	var names []string
	for _, b := range blocks {
		names = append(names, b.names...)
	}

	out := &Tensor{mode: t.Mode(), trials: make([]*mat.Dense, trials), channels: len(names), samples: samples}
	for trial := range out.trials {
		data := make([]float64, 0, len(names)*samples)
		for _, b := range blocks {
			for _, row := range b.rows[trial] {
				data = append(data, row...)
			}
		}
		out.trials[trial] = newDense(len(names), samples, data)
	}
	return out, names
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
