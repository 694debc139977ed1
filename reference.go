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
	"gonum.org/v1/gonum/floats"
)

// block is a run of output channels, computed for every trial.
type block struct {
	names []string
	rows  [][][]float64 // trial, channel, sample
}

func newBlock(trials, channels int) block {
	b := block{names: make([]string, 0, channels), rows: make([][][]float64, trials)}
	for i := range b.rows {
		b.rows[i] = make([][]float64, 0, channels)
	}
	return b
}

// channelMean writes the mean over the given channels of one trial into dst.
// The mean runs over the channel axis: axis 0 of a raw recording, axis 1 of
// an epoched one.
func channelMean(t *Tensor, trial int, channels []int, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for _, ch := range channels {
		floats.Add(dst, t.rowView(trial, ch))
	}
	floats.Scale(1/float64(len(channels)), dst)
}

// averaged subtracts the mean of refs from every target channel.
func averaged(t *Tensor, names []string, targets, refs []int) block {
	trials, _, samples := t.Dims()
	b := newBlock(trials, len(targets))
	if len(targets) == 0 || len(refs) == 0 {
		return b
	}

	for _, idx := range targets {
		b.names = append(b.names, names[idx])
	}

	mean := make([]float64, samples)
	for trial := 0; trial < trials; trial++ {
		channelMean(t, trial, refs, mean)
		for _, idx := range targets {
			row := make([]float64, samples)
			floats.SubTo(row, t.rowView(trial, idx), mean)
			b.rows[trial] = append(b.rows[trial], row)
		}
	}
	return b
}

// copied carries channels over unmodified.
func copied(t *Tensor, names []string, channels []int) block {
	trials, _, _ := t.Dims()
	b := newBlock(trials, len(channels))
	for _, idx := range channels {
		b.names = append(b.names, names[idx])
	}
	for trial := 0; trial < trials; trial++ {
		for _, idx := range channels {
			b.rows[trial] = append(b.rows[trial], t.Row(trial, idx))
		}
	}
	return b
}

// esrShaft references a shaft to its own mean. A single contact is left as is.
func esrShaft(t *Tensor, names []string, s Shaft) block {
	idx := shaftIndices(s)
	if len(idx) == 1 {
		return copied(t, names, idx)
	}
	return averaged(t, names, idx, idx)
}

// bipolarShaft emits contact[i] - contact[i+1]; the most distal contact has
// no partner and is dropped.
func bipolarShaft(t *Tensor, s Shaft) block {
	trials, _, samples := t.Dims()
	pairs := max(len(s.Channels)-1, 0)
	b := newBlock(trials, pairs)

	for i := 0; i < pairs; i++ {
		b.names = append(b.names, s.Channels[i].Name+"-"+s.Channels[i+1].Name)
	}
	for trial := 0; trial < trials; trial++ {
		for i := 0; i < pairs; i++ {
			row := make([]float64, samples)
			floats.SubTo(row, t.rowView(trial, s.Channels[i].Index), t.rowView(trial, s.Channels[i+1].Index))
			b.rows[trial] = append(b.rows[trial], row)
		}
	}
	return b
}

// laplacianShaft emits contact[i] - (contact[i-1]+contact[i+1])/2 for
// interior contacts; both ends of the shaft are dropped.
func laplacianShaft(t *Tensor, s Shaft) block {
	trials, _, samples := t.Dims()
	n := len(s.Channels)
	b := newBlock(trials, max(n-2, 0))

	for i := 1; i+1 < n; i++ {
		b.names = append(b.names, s.Channels[i].Name)
	}
	for trial := 0; trial < trials; trial++ {
		for i := 1; i+1 < n; i++ {
			row := make([]float64, samples)
			floats.AddTo(row, t.rowView(trial, s.Channels[i-1].Index), t.rowView(trial, s.Channels[i+1].Index))
			floats.Scale(-0.5, row)
			floats.Add(row, t.rowView(trial, s.Channels[i].Index))
			b.rows[trial] = append(b.rows[trial], row)
		}
	}
	return b
}

// tissueBlocks splits the grouped channels by tissue and references each
// subset to its own mean, gray first.
func tissueBlocks(t *Tensor, names []string, g *Grouping, labels map[string]Tissue) []block {
	var gray, white []int
	for _, ch := range g.Channels() {
		switch labels[ch.Name] {
		case Gray:
			gray = append(gray, ch.Index)
		case White:
			white = append(white, ch.Index)
		}
	}
	return []block{averaged(t, names, gray, gray), averaged(t, names, white, white)}
}

func shaftIndices(s Shaft) []int {
	idx := make([]int, len(s.Channels))
	for i, ch := range s.Channels {
		idx[i] = ch.Index
	}
	return idx
}
