// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package edf reads and writes EDF/EDF+ recordings as whole multichannel
// sample sets, the form the referencing engine consumes and produces.
package edf

import "time"

type Version string

const (
	// Version0 represents the version of the EDF/EDF+ standard.
	Version0 Version = "0"

	// AnnotationLabel marks an EDF+ annotation signal, which carries text
	// rather than samples.
	AnnotationLabel = "EDF Annotations"
)

// Header represents the EDF/EDF+ file header.
type Header struct {
	Version            Version       // Version of the EDF/EDF+ standard (usually "0")
	PatientID          string        // Identification of the patient
	RecordingID        string        // Identification of the recording session
	StartTime          time.Time     // Start date and time of the recording
	HeaderBytes        int           // Number of bytes in the header
	Reserved           string        // EDF+C or EDF+D for EDF+ files
	DataRecords        int           // Number of data records, -1 if unknown
	DataRecordDuration time.Duration // Duration of a single data record
	SignalCount        int           // Number of signals in each data record
	Signals            []Signal      // Details of each signal
}

// Signal represents the characteristics of each signal in the EDF/EDF+ file.
type Signal struct {
	Label             string  // Label of the signal (e.g., A1, B'3)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., uV, mV)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// IsAnnotation reports whether the signal is an EDF+ annotation channel.
func (s Signal) IsAnnotation() bool { return s.Label == AnnotationLabel }

// Labels returns the labels of the sampled (non-annotation) signals.
func (h *Header) Labels() []string {
	labels := make([]string, 0, len(h.Signals))
	for _, s := range h.Signals {
		if !s.IsAnnotation() {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// recordSamples is the total number of samples in one data record.
func (h *Header) recordSamples() int {
	n := 0
	for _, s := range h.Signals {
		n += s.SamplesPerRecord
	}
	return n
}
