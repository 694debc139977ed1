// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package reref

import "fmt"

// Scheme selects a referencing transform.
type Scheme int

const (
	// CAR subtracts the mean of all channels.
	CAR Scheme = iota + 1
	// Monopolar subtracts the mean of Params.References.
	Monopolar
	// ESR subtracts, per shaft, the mean of that shaft.
	ESR
	// Bipolar replaces each contact by its difference to the next contact.
	Bipolar
	// Laplacian replaces each interior contact by its difference to the mean
	// of its two neighbors.
	Laplacian
	// GWR subtracts the mean of the gray matter channels from gray matter
	// channels, and likewise for white matter.
	GWR
)

// Schemes lists every scheme in declaration order.
var Schemes = []Scheme{CAR, Monopolar, ESR, Bipolar, Laplacian, GWR}

func (s Scheme) String() string {
	switch s {
	case CAR:
		return "CAR"
	case Monopolar:
		return "Monopolar"
	case ESR:
		return "ESR"
	case Bipolar:
		return "Bipolar"
	case Laplacian:
		return "Laplacian"
	case GWR:
		return "GWR"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// Valid reports whether s is one of the defined schemes.
func (s Scheme) Valid() bool { return s >= CAR && s <= GWR }

// grouped reports whether the scheme works on shafts.
func (s Scheme) grouped() bool {
	switch s {
	case ESR, Bipolar, Laplacian, GWR:
		return true
	default:
		return false
	}
}

// Params carries the scheme-specific parameters of a referencing call.
type Params struct {
	// References are the channels averaged by Monopolar. Required by Monopolar.
	References []string
	// ExcludeShafts are shaft labels dropped by ESR, Bipolar, Laplacian and GWR.
	ExcludeShafts []string
	// PassthroughUtility keeps channels without a contact number (triggers, DC
	// inputs) out of every computation and appends them, unmodified, after
	// the referenced channels.
	PassthroughUtility bool
	// Classifier labels channels for GWR. Required by GWR.
	Classifier Classifier
}
