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
	"strings"
)

// ParseError reports a channel name that cannot be split into a shaft label
// and a contact number.
type ParseError struct {
	Channel string // Offending channel name
	Reason  string // What is wrong with it
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing channel %q: %s", e.Channel, e.Reason)
}

// SchemeParameterError reports an unknown scheme or a missing or invalid
// scheme parameter.
type SchemeParameterError struct {
	Scheme Scheme // Scheme being applied
	Param  string // Offending parameter (or value)
	Reason string
}

func (e *SchemeParameterError) Error() string {
	if !e.Scheme.Valid() {
		return fmt.Sprintf("invalid reference scheme %q: %s", e.Param, e.Reason)
	}
	if e.Param == "" {
		return fmt.Sprintf("invalid %s parameters: %s", e.Scheme, e.Reason)
	}
	return fmt.Sprintf("invalid %s parameter %q: %s", e.Scheme, e.Param, e.Reason)
}

// AnatomicalLookupError reports channels for which no tissue label could be
// determined. Err is set when the classifier itself failed.
type AnatomicalLookupError struct {
	Channels []string
	Err      error
}

func (e *AnatomicalLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error classifying channel %s: %v", strings.Join(e.Channels, ", "), e.Err)
	}
	return fmt.Sprintf("unknown tissue label for channels: %s", strings.Join(e.Channels, ", "))
}

func (e *AnatomicalLookupError) Unwrap() error { return e.Err }

// ShapeError reports a tensor whose dimensions are inconsistent, either
// internally or with the accompanying channel names.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "tensor shape mismatch: " + e.Reason
}

// DegenerateGroupWarning notes a shaft with too few contacts for a
// neighbor-based scheme. The shaft contributes no channels to the output.
type DegenerateGroupWarning struct {
	Scheme   Scheme
	Shaft    string
	Contacts int // Contacts present on the shaft
	Required int // Minimum contacts the scheme needs to produce a channel
}

func (w DegenerateGroupWarning) String() string {
	return fmt.Sprintf("%s: shaft %q has %d contact(s), needs %d; no channels produced",
		w.Scheme, w.Shaft, w.Contacts, w.Required)
}
