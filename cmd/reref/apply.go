// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenPSG/reref"
	"github.com/OpenPSG/reref/config"
	"github.com/OpenPSG/reref/edf"
)

// readRecording loads the sampled signals of an EDF file.
func readRecording(path string) (edf.Header, []string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return edf.Header{}, nil, nil, err
	}
	defer f.Close()

	er, err := edf.Open(f)
	if err != nil {
		return edf.Header{}, nil, nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	labels, signals, err := er.ReadAll()
	if err != nil {
		return edf.Header{}, nil, nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return er.Header(), labels, signals, nil
}

// printGroups writes one line per shaft, followed by the utility channels.
func printGroups(w io.Writer, path string) error {
	_, labels, _, err := readRecording(path)
	if err != nil {
		return err
	}

	contacts, utility := reref.SplitUtility(labels)
	names := make([]string, len(contacts))
	for i, idx := range contacts {
		names[i] = labels[idx]
	}

	g, err := reref.GroupChannels(names)
	if err != nil {
		return err
	}
	for _, s := range g.Shafts {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", s.Label, len(s.Channels), strings.Join(s.Names(), " ")); err != nil {
			return err
		}
	}
	if len(utility) > 0 {
		other := make([]string, len(utility))
		for i, idx := range utility {
			other[i] = labels[idx]
		}
		if _, err := fmt.Fprintf(w, "utility\t%d\t%s\n", len(other), strings.Join(other, " ")); err != nil {
			return err
		}
	}
	return nil
}

// applyFile runs the job in cfgPath over the recording at in and writes the
// referenced recording to out. With epoch > 0 the recording is referenced in
// epochs of that many samples, then joined back together.
func applyFile(logger *zap.Logger, cfgPath, in, out string, epoch int) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	src, labels, signals, err := readRecording(in)
	if err != nil {
		return err
	}

	t, err := reref.RawFromRows(signals)
	if err != nil {
		return err
	}
	if epoch > 0 {
		if t, err = t.Segment(epoch); err != nil {
			return err
		}
	}

	engine := reref.New(append(cfg.EngineOptions(), reref.WithLogger(logger))...)
	res, err := engine.Apply(cfg.ReferenceScheme(), t, labels, cfg.Params())
	if err != nil {
		return err
	}
	if len(res.Names) == 0 {
		return errors.New("no channels left after referencing")
	}

	rows := res.Tensor.Flatten().Rows(0)
	hdr, err := edf.DeriveHeader(src, res.Names, rows)
	if err != nil {
		return err
	}

	// EDF stores whole data records only.
	perRecord := hdr.Signals[0].SamplesPerRecord
	if perRecord <= 0 {
		return fmt.Errorf("invalid samples per record %d in %s", perRecord, in)
	}
	if whole := len(rows[0]) / perRecord * perRecord; whole != len(rows[0]) {
		logger.Warn("Dropping samples that do not fill a data record",
			zap.Int("samples", len(rows[0])),
			zap.Int("kept", whole))
		for i := range rows {
			rows[i] = rows[i][:whole]
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	ew, err := edf.Create(f, hdr)
	if err != nil {
		return err
	}
	if err := ew.WriteSignals(rows); err != nil {
		return err
	}
	if err := ew.Close(); err != nil {
		return err
	}

	logger.Info("Wrote referenced recording",
		zap.Stringer("scheme", cfg.ReferenceScheme()),
		zap.Stringer("mode", res.Tensor.Mode()),
		zap.String("path", out),
		zap.Int("channels", len(res.Names)),
		zap.Int("degenerate_shafts", len(res.Warnings)))

	return f.Close()
}
