// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.Signals = append([]Signal(nil), hdr.Signals...)

	// Calibrate with the values a reader will parse back, not the unrounded ones.
	for i := range hdr.Signals {
		sig := &hdr.Signals[i]
		sig.PhysicalMin, _ = strconv.ParseFloat(formatNumber(sig.PhysicalMin, 8), 64)
		sig.PhysicalMax, _ = strconv.ParseFloat(formatNumber(sig.PhysicalMax, 8), 64)
	}

	ew := &Writer{w: w, hdr: &hdr}
	if err := writeHeader(w, ew.hdr); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
func (ew *Writer) Close() error {
	ew.hdr.DataRecords = ew.dataRecords

	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to header: %w", err)
	}
	if err := writeHeader(ew.w, ew.hdr); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	_, err := ew.w.Seek(0, io.SeekEnd)
	return err
}

// WriteRecord writes a single data record, one sample slice per signal.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	if len(signals) != len(ew.hdr.Signals) {
		return fmt.Errorf("expected %d signals, got %d", len(ew.hdr.Signals), len(signals))
	}
	for i, sig := range ew.hdr.Signals {
		if len(signals[i]) != sig.SamplesPerRecord {
			return fmt.Errorf("signal %q: expected %d samples, got %d", sig.Label, sig.SamplesPerRecord, len(signals[i]))
		}
	}

	bw := bufio.NewWriter(ew.w)
	buf := make([]byte, 2)
	for i, sig := range ew.hdr.Signals {
		for _, sample := range signals[i] {
			binary.LittleEndian.PutUint16(buf, uint16(convertPhysicalToDigital(sample, sig.PhysicalMin, sig.PhysicalMax, sig.DigitalMin, sig.DigitalMax)))
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// WriteSignals writes whole signals, splitting them into data records. Every
// signal must hold the same whole number of records. Samples that do not
// fill a final record are rejected rather than padded.
func (ew *Writer) WriteSignals(signals [][]float64) error {
	if len(signals) != len(ew.hdr.Signals) {
		return fmt.Errorf("expected %d signals, got %d", len(ew.hdr.Signals), len(signals))
	}
	if len(signals) == 0 {
		return nil
	}

	first := ew.hdr.Signals[0]
	if first.SamplesPerRecord <= 0 {
		return fmt.Errorf("signal %q: invalid samples per record %d", first.Label, first.SamplesPerRecord)
	}
	records := len(signals[0]) / first.SamplesPerRecord
	for i, sig := range ew.hdr.Signals {
		if sig.SamplesPerRecord <= 0 || len(signals[i]) != records*sig.SamplesPerRecord {
			return fmt.Errorf("signal %q: %d samples is not %d records of %d", sig.Label, len(signals[i]), records, sig.SamplesPerRecord)
		}
	}

	record := make([][]float64, len(signals))
	for rec := 0; rec < records; rec++ {
		for i, sig := range ew.hdr.Signals {
			record[i] = signals[i][rec*sig.SamplesPerRecord : (rec+1)*sig.SamplesPerRecord]
		}
		if err := ew.WriteRecord(record); err != nil {
			return fmt.Errorf("error writing data record %d: %w", rec, err)
		}
	}
	return nil
}

// DeriveHeader builds the header of a recording derived from src: patient,
// recording and timing are kept, the signals are replaced by labels with a
// physical range wide enough for the given samples.
func DeriveHeader(src Header, labels []string, signals [][]float64) (Header, error) {
	if len(labels) != len(signals) {
		return Header{}, fmt.Errorf("got %d labels for %d signals", len(labels), len(signals))
	}

	var proto *Signal
	for i := range src.Signals {
		if !src.Signals[i].IsAnnotation() {
			proto = &src.Signals[i]
			break
		}
	}
	if proto == nil {
		return Header{}, fmt.Errorf("source header has no sampled signals")
	}

	pmin, pmax := math.Inf(1), math.Inf(-1)
	for _, s := range signals {
		for _, v := range s {
			pmin = math.Min(pmin, v)
			pmax = math.Max(pmax, v)
		}
	}
	if pmin > pmax {
		pmin, pmax = proto.PhysicalMin, proto.PhysicalMax
	}
	pmin, pmax = math.Floor(pmin), math.Ceil(pmax)
	if pmin == pmax {
		pmin, pmax = pmin-1, pmax+1
	}
	for _, v := range []float64{pmin, pmax} {
		if len(formatNumber(v, 8)) > 8 {
			return Header{}, fmt.Errorf("physical range [%g, %g] cannot be written in 8 characters", pmin, pmax)
		}
	}
	for _, label := range labels {
		if len(label) > 16 {
			return Header{}, fmt.Errorf("label %q is longer than 16 characters", label)
		}
	}

	hdr := Header{
		Version:            src.Version,
		PatientID:          src.PatientID,
		RecordingID:        src.RecordingID,
		StartTime:          src.StartTime,
		DataRecordDuration: src.DataRecordDuration,
		Signals:            make([]Signal, len(labels)),
	}
	for i, label := range labels {
		hdr.Signals[i] = Signal{
			Label:             label,
			TransducerType:    proto.TransducerType,
			PhysicalDimension: proto.PhysicalDimension,
			PhysicalMin:       pmin,
			PhysicalMax:       pmax,
			DigitalMin:        math.MinInt16,
			DigitalMax:        math.MaxInt16,
			Prefiltering:      proto.Prefiltering,
			SamplesPerRecord:  proto.SamplesPerRecord,
		}
	}
	hdr.SignalCount = len(hdr.Signals)
	return hdr, nil
}

// convertPhysicalToDigital converts a physical value to a digital value using
// the calibration factors, clamping to the digital range.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0 // Avoid division by zero
	}
	digital := math.Round((physical-pmin)*float64(dmax-dmin)/(pmax-pmin)) + float64(dmin)
	return int16(math.Max(float64(dmin), math.Min(float64(dmax), digital)))
}
