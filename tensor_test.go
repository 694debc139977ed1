// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package reref_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/OpenPSG/reref"
	"github.com/OpenPSG/reref/internal/testutil"
)

func TestRawFromRows(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}}
	tensor, err := reref.RawFromRows(rows)
	require.NoError(t, err)

	trials, channels, samples := tensor.Dims()
	assert.Equal(t, []int{1, 2, 3}, []int{trials, channels, samples})
	assert.Equal(t, reref.Raw, tensor.Mode())
	assert.Equal(t, 6.0, tensor.At(0, 1, 2))

	// The tensor owns its data.
	rows[0][0] = 100
	assert.Equal(t, 1.0, tensor.At(0, 0, 0))

	row := tensor.Row(0, 0)
	row[1] = 100
	assert.Equal(t, 2.0, tensor.At(0, 0, 1))
}

func TestRawFromRowsRagged(t *testing.T) {
	_, err := reref.RawFromRows([][]float64{{1, 2, 3}, {4, 5}})

	var serr *reref.ShapeError
	require.True(t, errors.As(err, &serr))
}

func TestRawFromRowsEmptySamples(t *testing.T) {
	tensor, err := reref.RawFromRows([][]float64{{}, {}})
	require.NoError(t, err)

	_, channels, samples := tensor.Dims()
	assert.Equal(t, 2, channels)
	assert.Equal(t, 0, samples)
	assert.Empty(t, tensor.Row(0, 1))
}

func TestNewEpochs(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewDense(2, 3, []float64{7, 8, 9, 10, 11, 12})

	tensor, err := reref.NewEpochs([]mat.Matrix{a, b})
	require.NoError(t, err)

	trials, channels, samples := tensor.Dims()
	assert.Equal(t, []int{2, 2, 3}, []int{trials, channels, samples})
	assert.Equal(t, reref.Epoch, tensor.Mode())
	assert.Equal(t, 10.0, tensor.At(1, 1, 0))

	a.Set(0, 0, 100)
	assert.Equal(t, 1.0, tensor.At(0, 0, 0))

	_, err = reref.NewEpochs([]mat.Matrix{a, mat.NewDense(3, 3, nil)})
	require.Error(t, err)

	_, err = reref.NewEpochs(nil)
	require.Error(t, err)
}

func TestNewRaw(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	tensor := reref.NewRaw(m)
	m.Set(1, 1, 40)

	assert.Equal(t, 4.0, tensor.At(0, 1, 1))
	assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), tensor.Trial(0)))
}

func TestSegmentAndFlatten(t *testing.T) {
	raw := testutil.RawTensor(t, 3, 10)

	epochs, err := raw.Segment(4)
	require.NoError(t, err)

	trials, channels, samples := epochs.Dims()
	assert.Equal(t, []int{2, 3, 4}, []int{trials, channels, samples})
	assert.Equal(t, reref.Epoch, epochs.Mode())
	assert.Equal(t, raw.At(0, 2, 5), epochs.At(1, 2, 1))

	flat := epochs.Flatten()
	_, channels, samples = flat.Dims()
	assert.Equal(t, reref.Raw, flat.Mode())
	assert.Equal(t, 3, channels)
	assert.Equal(t, 8, samples)
	for ch := 0; ch < channels; ch++ {
		assert.Equal(t, raw.Row(0, ch)[:8], flat.Row(0, ch))
	}

	_, err = raw.Segment(11)
	require.Error(t, err)
	_, err = raw.Segment(0)
	require.Error(t, err)
	_, err = epochs.Segment(2)
	require.Error(t, err)
}

func TestClone(t *testing.T) {
	tensor := testutil.EpochTensor(t, 2, 3, 5)
	clone := tensor.Clone()

	assert.Equal(t, tensor.Mode(), clone.Mode())
	for tr := 0; tr < 2; tr++ {
		assert.Equal(t, tensor.Rows(tr), clone.Rows(tr))
	}
}
