// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package testutil builds deterministic recordings for tests.
package testutil

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OpenPSG/reref"
	"github.com/OpenPSG/reref/edf"
)

// Rows returns channels x samples values that differ per channel and sample,
// so that a wrong row or a wrong offset shows up in comparisons.
func Rows(channels, samples int) [][]float64 {
	rows := make([][]float64, channels)
	for ch := range rows {
		rows[ch] = make([]float64, samples)
		for s := range rows[ch] {
			rows[ch][s] = 10*math.Sin(float64(s)*0.1*float64(ch+1)) + float64(ch*ch) - 0.5*float64(s%7)
		}
	}
	return rows
}

// RawTensor returns a raw tensor over Rows(channels, samples).
func RawTensor(t testing.TB, channels, samples int) *reref.Tensor {
	t.Helper()
	tensor, err := reref.RawFromRows(Rows(channels, samples))
	require.NoError(t, err)
	return tensor
}

// EpochTensor returns an epoch tensor whose trials are shifted copies of
// Rows(channels, samples).
func EpochTensor(t testing.TB, trials, channels, samples int) *reref.Tensor {
	t.Helper()
	data := make([][][]float64, trials)
	for tr := range data {
		data[tr] = Rows(channels, samples)
		for ch := range data[tr] {
			for s := range data[tr][ch] {
				data[tr][ch][s] += float64(tr*100 + ch)
			}
		}
	}
	tensor, err := reref.EpochsFromTrials(data)
	require.NoError(t, err)
	return tensor
}

// WriteEDF writes signals to a new EDF file at path with one-second data
// records of samplesPerRecord samples.
func WriteEDF(t testing.TB, path string, labels []string, signals [][]float64, samplesPerRecord int) {
	t.Helper()

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "Patient X",
		RecordingID:        "Recording 1",
		StartTime:          time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
	}
	for _, label := range labels {
		hdr.Signals = append(hdr.Signals, edf.Signal{
			Label:             label,
			TransducerType:    "Depth electrode",
			PhysicalDimension: "uV",
			PhysicalMin:       -1000,
			PhysicalMax:       1000,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  samplesPerRecord,
		})
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})

	ew, err := edf.Create(f, hdr)
	require.NoError(t, err)
	require.NoError(t, ew.WriteSignals(signals))
	require.NoError(t, ew.Close())
	require.NoError(t, f.Close())
}
