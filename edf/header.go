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
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxRecordBytes bounds the size of a single data record accepted on read.
const maxRecordBytes = 1 << 30

// field is one fixed-width ASCII header entry.
type field[T any] struct {
	name  string
	width int
	get   func(*T) string
	set   func(*T, string) error
}

var headerFields = []field[Header]{
	{"version", 8,
		func(h *Header) string { return string(h.Version) },
		func(h *Header, v string) error { h.Version = Version(v); return nil }},
	{"patient id", 80,
		func(h *Header) string { return h.PatientID },
		func(h *Header, v string) error { h.PatientID = v; return nil }},
	{"recording id", 80,
		func(h *Header) string { return h.RecordingID },
		func(h *Header, v string) error { h.RecordingID = v; return nil }},
	{"start date", 8,
		func(h *Header) string { return h.StartTime.Format("02.01.06") },
		func(h *Header, v string) error {
			d, err := time.Parse("02.01.06", v)
			h.StartTime = d
			return err
		}},
	{"start time", 8,
		func(h *Header) string { return h.StartTime.Format("15.04.05") },
		func(h *Header, v string) error {
			t, err := time.Parse("15.04.05", v)
			d := h.StartTime
			h.StartTime = time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
			return err
		}},
	{"header bytes", 8,
		func(h *Header) string { return strconv.Itoa(h.HeaderBytes) },
		func(h *Header, v string) (err error) { h.HeaderBytes, err = strconv.Atoi(v); return }},
	{"reserved", 44,
		func(h *Header) string { return h.Reserved },
		func(h *Header, v string) error { h.Reserved = v; return nil }},
	{"number of data records", 8,
		func(h *Header) string { return strconv.Itoa(h.DataRecords) },
		func(h *Header, v string) (err error) { h.DataRecords, err = strconv.Atoi(v); return }},
	{"data record duration", 8,
		func(h *Header) string { return formatNumber(h.DataRecordDuration.Seconds(), 8) },
		func(h *Header, v string) error {
			s, err := strconv.ParseFloat(v, 64)
			h.DataRecordDuration = time.Duration(s * float64(time.Second))
			return err
		}},
	{"signal count", 4,
		func(h *Header) string { return strconv.Itoa(h.SignalCount) },
		func(h *Header, v string) (err error) { h.SignalCount, err = strconv.Atoi(v); return }},
}

var signalFields = []field[Signal]{
	{"label", 16,
		func(s *Signal) string { return s.Label },
		func(s *Signal, v string) error { s.Label = v; return nil }},
	{"transducer type", 80,
		func(s *Signal) string { return s.TransducerType },
		func(s *Signal, v string) error { s.TransducerType = v; return nil }},
	{"physical dimension", 8,
		func(s *Signal) string { return s.PhysicalDimension },
		func(s *Signal, v string) error { s.PhysicalDimension = v; return nil }},
	{"physical minimum", 8,
		func(s *Signal) string { return formatNumber(s.PhysicalMin, 8) },
		func(s *Signal, v string) (err error) { s.PhysicalMin, err = strconv.ParseFloat(v, 64); return }},
	{"physical maximum", 8,
		func(s *Signal) string { return formatNumber(s.PhysicalMax, 8) },
		func(s *Signal, v string) (err error) { s.PhysicalMax, err = strconv.ParseFloat(v, 64); return }},
	{"digital minimum", 8,
		func(s *Signal) string { return strconv.Itoa(s.DigitalMin) },
		func(s *Signal, v string) (err error) { s.DigitalMin, err = strconv.Atoi(v); return }},
	{"digital maximum", 8,
		func(s *Signal) string { return strconv.Itoa(s.DigitalMax) },
		func(s *Signal, v string) (err error) { s.DigitalMax, err = strconv.Atoi(v); return }},
	{"prefiltering", 80,
		func(s *Signal) string { return s.Prefiltering },
		func(s *Signal, v string) error { s.Prefiltering = v; return nil }},
	{"samples per record", 8,
		func(s *Signal) string { return strconv.Itoa(s.SamplesPerRecord) },
		func(s *Signal, v string) (err error) { s.SamplesPerRecord, err = strconv.Atoi(v); return }},
	{"reserved", 32,
		func(s *Signal) string { return s.Reserved },
		func(s *Signal, v string) error { s.Reserved = v; return nil }},
}

// readHeader parses the fixed part of the header followed by the per-signal
// fields, which are stored field by field across all signals.
func readHeader(r io.Reader) (*Header, error) {
	hdr := &Header{}
	for _, f := range headerFields {
		v, err := readField(r, f.width)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", f.name, err)
		}
		if err := f.set(hdr, v); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", f.name, err)
		}
	}
	if hdr.SignalCount < 0 || hdr.HeaderBytes != 256+hdr.SignalCount*256 {
		return nil, fmt.Errorf("invalid signal count %d for a %d byte header", hdr.SignalCount, hdr.HeaderBytes)
	}

	hdr.Signals = make([]Signal, hdr.SignalCount)
	for _, f := range signalFields {
		for i := range hdr.Signals {
			v, err := readField(r, f.width)
			if err != nil {
				return nil, fmt.Errorf("error reading %s of signal %d: %w", f.name, i, err)
			}
			if err := f.set(&hdr.Signals[i], v); err != nil {
				return nil, fmt.Errorf("error parsing %s of signal %d: %w", f.name, i, err)
			}
		}
	}

	total := 0
	for i, sig := range hdr.Signals {
		if sig.SamplesPerRecord < 0 {
			return nil, fmt.Errorf("invalid samples per record %d of signal %d", sig.SamplesPerRecord, i)
		}
		total += sig.SamplesPerRecord
	}
	if total*2 > maxRecordBytes {
		return nil, fmt.Errorf("data record of %d samples exceeds %d bytes", total, maxRecordBytes)
	}

	return hdr, nil
}

func readField(r io.Reader, width int) (string, error) {
	b := make([]byte, width)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// writeHeader serializes hdr, fixing up HeaderBytes and SignalCount first.
func writeHeader(w io.Writer, hdr *Header) error {
	hdr.SignalCount = len(hdr.Signals)
	hdr.HeaderBytes = 256 + hdr.SignalCount*256

	bw := bufio.NewWriter(w)
	for _, f := range headerFields {
		v, err := pad(f.get(hdr), f.width)
		if err != nil {
			return fmt.Errorf("error writing %s: %w", f.name, err)
		}
		if _, err := bw.WriteString(v); err != nil {
			return err
		}
	}
	for _, f := range signalFields {
		for i := range hdr.Signals {
			v, err := pad(f.get(&hdr.Signals[i]), f.width)
			if err != nil {
				return fmt.Errorf("error writing %s of signal %d: %w", f.name, i, err)
			}
			if _, err := bw.WriteString(v); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// pad left-aligns v in a field of the given width. Values that do not fit
// are rejected rather than truncated.
func pad(v string, width int) (string, error) {
	if len(v) > width {
		return "", fmt.Errorf("%q does not fit in %d characters", v, width)
	}
	return v + strings.Repeat(" ", width-len(v)), nil
}

// formatNumber renders v in at most width characters, dropping precision
// before it drops digits of the integer part. If even the integer part is
// too wide the result is longer than width.
func formatNumber(v float64, width int) string {
	for prec := 6; prec >= 0; prec-- {
		s := strconv.FormatFloat(v, 'f', prec, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
		}
		if len(s) <= width {
			return s
		}
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
