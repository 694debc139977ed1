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
	"errors"
	"fmt"
	"io"
)

// Reader reads EDF/EDF+ files.
type Reader struct {
	r   io.ReadSeeker
	hdr *Header
}

// Open opens an EDF/EDF+ file for reading.
func Open(r io.ReadSeeker) (*Reader, error) {
	hdr, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	return &Reader{r: r, hdr: hdr}, nil
}

// Header returns a copy of the parsed header.
func (er *Reader) Header() Header {
	hdr := *er.hdr
	hdr.Signals = append([]Signal(nil), er.hdr.Signals...)
	return hdr
}

// ReadAll reads every data record and returns the labels and physical
// samples of the sampled signals, one slice per signal. Annotation signals
// are skipped. All sampled signals must share the same sample rate.
func (er *Reader) ReadAll() ([]string, [][]float64, error) {
	var first *Signal
	for i := range er.hdr.Signals {
		sig := &er.hdr.Signals[i]
		if sig.IsAnnotation() {
			continue
		}
		if first == nil {
			first = sig
		} else if sig.SamplesPerRecord != first.SamplesPerRecord {
			return nil, nil, fmt.Errorf("signals %q and %q have different sample rates", first.Label, sig.Label)
		}
	}

	if _, err := er.r.Seek(int64(er.hdr.HeaderBytes), io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("error seeking to data records: %w", err)
	}

	samples := make([][]float64, len(er.hdr.Signals))
	buf := make([]byte, er.hdr.recordSamples()*2)
	br := bufio.NewReader(er.r)

	for rec := 0; len(buf) > 0 && (er.hdr.DataRecords < 0 || rec < er.hdr.DataRecords); rec++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if er.hdr.DataRecords < 0 && errors.Is(err, io.EOF) {
				break // Record count was never finalized
			}
			return nil, nil, fmt.Errorf("error reading data record %d: %w", rec, err)
		}

		off := 0
		for i, sig := range er.hdr.Signals {
			if !sig.IsAnnotation() {
				for j := 0; j < sig.SamplesPerRecord; j++ {
					digital := int16(binary.LittleEndian.Uint16(buf[(off+j)*2:]))
					samples[i] = append(samples[i], convertDigitalToPhysical(digital, sig.DigitalMin, sig.DigitalMax, sig.PhysicalMin, sig.PhysicalMax))
				}
			}
			off += sig.SamplesPerRecord
		}
	}

	labels := make([]string, 0, len(er.hdr.Signals))
	signals := make([][]float64, 0, len(er.hdr.Signals))
	for i, sig := range er.hdr.Signals {
		if sig.IsAnnotation() {
			continue
		}
		labels = append(labels, sig.Label)
		if samples[i] == nil {
			samples[i] = []float64{}
		}
		signals = append(signals, samples[i])
	}

	return labels, signals, nil
}

// convertDigitalToPhysical converts a digital value from the data record to a physical value using the calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0 // Avoid division by zero
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}
