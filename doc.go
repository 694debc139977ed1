// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package reref re-references multichannel stereo-EEG recordings.
//
// Channel names such as "A1", "A2" or "B'10" are grouped into ordered
// electrode shafts, and a Tensor of samples is re-expressed relative to a
// reference derived from other channels:
//
//   - CAR: common average of all channels
//   - Monopolar: average of an explicit set of reference channels
//   - ESR: common average within each shaft
//   - Bipolar: difference between adjacent contacts of a shaft
//   - Laplacian: contact minus the mean of its two shaft neighbors
//   - GWR: common average within the gray and white matter channels
//
// Tensors are either continuous (channel x sample) or epoched
// (trial x channel x sample). Every transform returns a new Tensor and a new
// channel name list; inputs are never modified.
//
// # Usage
//
//	t, err := reref.RawFromRows(rows)
//	res, err := reref.ApplyReference(reref.Bipolar, t, names, reref.Params{
//		ExcludeShafts: []string{"DC"},
//	})
//	fmt.Println(res.Names) // [A1-A2 A2-A3 B1-B2]
package reref
