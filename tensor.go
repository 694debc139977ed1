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

	"gonum.org/v1/gonum/mat"
)

// Mode describes the layout of a Tensor.
type Mode int

const (
	// Raw is a continuous recording, channel x sample.
	Raw Mode = iota
	// Epoch is a trial-segmented recording, trial x channel x sample.
	Epoch
)

func (m Mode) String() string {
	switch m {
	case Raw:
		return "raw"
	case Epoch:
		return "epoch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Tensor holds samples for a list of channels. A raw tensor has a single
// trial. Each trial is a channel x sample matrix whose row order matches the
// channel names passed alongside it.
type Tensor struct {
	mode     Mode
	trials   []*mat.Dense
	channels int
	samples  int
}

// NewRaw creates a raw tensor from a channel x sample matrix. The matrix is copied.
func NewRaw(m mat.Matrix) *Tensor {
	r, c := m.Dims()
	return &Tensor{mode: Raw, trials: []*mat.Dense{copyDense(m)}, channels: r, samples: c}
}

// NewEpochs creates an epoch tensor from per-trial channel x sample matrices.
// All trials must share the same dimensions. The matrices are copied.
func NewEpochs(trials []mat.Matrix) (*Tensor, error) {
	if len(trials) == 0 {
		return nil, &ShapeError{Reason: "epoch tensor needs at least one trial"}
	}

	r, c := trials[0].Dims()
	t := &Tensor{mode: Epoch, trials: make([]*mat.Dense, len(trials)), channels: r, samples: c}
	for i, m := range trials {
		if tr, tc := m.Dims(); tr != r || tc != c {
			return nil, &ShapeError{Reason: fmt.Sprintf("trial %d is %dx%d, expected %dx%d", i, tr, tc, r, c)}
		}
		t.trials[i] = copyDense(m)
	}
	return t, nil
}

// RawFromRows creates a raw tensor from one sample slice per channel.
func RawFromRows(rows [][]float64) (*Tensor, error) {
	m, r, c, err := denseFromRows(rows)
	if err != nil {
		return nil, err
	}
	return &Tensor{mode: Raw, trials: []*mat.Dense{m}, channels: r, samples: c}, nil
}

// EpochsFromTrials creates an epoch tensor from trial x channel x sample slices.
func EpochsFromTrials(trials [][][]float64) (*Tensor, error) {
	if len(trials) == 0 {
		return nil, &ShapeError{Reason: "epoch tensor needs at least one trial"}
	}

	t := &Tensor{mode: Epoch, trials: make([]*mat.Dense, len(trials))}
	for i, rows := range trials {
		m, r, c, err := denseFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		if i == 0 {
			t.channels, t.samples = r, c
		} else if r != t.channels || c != t.samples {
			return nil, &ShapeError{Reason: fmt.Sprintf("trial %d is %dx%d, expected %dx%d", i, r, c, t.channels, t.samples)}
		}
		t.trials[i] = m
	}
	return t, nil
}

// Mode returns the layout of the tensor.
func (t *Tensor) Mode() Mode { return t.mode }

// Dims returns the number of trials (1 for raw tensors), channels and samples.
func (t *Tensor) Dims() (trials, channels, samples int) {
	return len(t.trials), t.channels, t.samples
}

// At returns a single sample.
func (t *Tensor) At(trial, channel, sample int) float64 {
	return t.trials[trial].At(channel, sample)
}

// Row returns a copy of the samples of one channel in one trial.
func (t *Tensor) Row(trial, channel int) []float64 {
	return append([]float64(nil), t.rowView(trial, channel)...)
}

// Rows returns a copy of one trial as one sample slice per channel.
func (t *Tensor) Rows(trial int) [][]float64 {
	rows := make([][]float64, t.channels)
	for ch := range rows {
		rows[ch] = t.Row(trial, ch)
	}
	return rows
}

// Trial returns a copy of one trial as a channel x sample matrix.
func (t *Tensor) Trial(trial int) *mat.Dense {
	return copyDense(t.trials[trial])
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{mode: t.mode, trials: make([]*mat.Dense, len(t.trials)), channels: t.channels, samples: t.samples}
	for i, m := range t.trials {
		c.trials[i] = copyDense(m)
	}
	return c
}

// Segment cuts a raw tensor into consecutive, non-overlapping epochs of n
// samples. Trailing samples that do not fill an epoch are dropped.
func (t *Tensor) Segment(n int) (*Tensor, error) {
	if t.mode != Raw {
		return nil, &ShapeError{Reason: "only raw tensors can be segmented"}
	}
	if n <= 0 {
		return nil, &ShapeError{Reason: fmt.Sprintf("invalid epoch length %d", n)}
	}
	count := t.samples / n
	if count == 0 {
		return nil, &ShapeError{Reason: fmt.Sprintf("epoch length %d exceeds %d samples", n, t.samples)}
	}

	out := &Tensor{mode: Epoch, trials: make([]*mat.Dense, count), channels: t.channels, samples: n}
	for i := range out.trials {
		if t.channels == 0 {
			out.trials[i] = &mat.Dense{}
			continue
		}
		out.trials[i] = copyDense(t.trials[0].Slice(0, t.channels, i*n, (i+1)*n))
	}
	return out, nil
}

// Flatten joins the trials of an epoch tensor back to back into a raw tensor.
// A raw tensor is returned as a copy.
func (t *Tensor) Flatten() *Tensor {
	if t.mode == Raw {
		return t.Clone()
	}

	samples := t.samples * len(t.trials)
	data := make([]float64, 0, t.channels*samples)
	for ch := 0; ch < t.channels; ch++ {
		for trial := range t.trials {
			data = append(data, t.rowView(trial, ch)...)
		}
	}
	return &Tensor{mode: Raw, trials: []*mat.Dense{newDense(t.channels, samples, data)}, channels: t.channels, samples: samples}
}

// rowView exposes the backing samples of a channel. Callers must not write to it.
func (t *Tensor) rowView(trial, channel int) []float64 {
	if t.samples == 0 {
		return nil
	}
	return t.trials[trial].RawRowView(channel)
}

// newDense wraps data as an r x c matrix, tolerating empty dimensions which
// mat.NewDense rejects.
func newDense(r, c int, data []float64) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, data)
}

func copyDense(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(m)
}

func denseFromRows(rows [][]float64) (m *mat.Dense, channels, samples int, err error) {
	if len(rows) == 0 {
		return &mat.Dense{}, 0, 0, nil
	}

	samples = len(rows[0])
	data := make([]float64, 0, len(rows)*samples)
	for i, row := range rows {
		if len(row) != samples {
			return nil, 0, 0, &ShapeError{Reason: fmt.Sprintf("channel %d has %d samples, expected %d", i, len(row), samples)}
		}
		data = append(data, row...)
	}
	return newDense(len(rows), samples, data), len(rows), samples, nil
}
