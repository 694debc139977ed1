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
	"sort"
	"strconv"
	"strings"
)

// Channel is one contact of an electrode shaft.
type Channel struct {
	Name    string // Channel name as given (e.g. B'12 or A1-A2)
	Shaft   string // Shaft label, everything before the first digit (e.g. B')
	Contact int    // Contact number along the shaft
	Index   int    // Position of the channel in the input name list
}

// Shaft is the ordered set of contacts on one electrode.
type Shaft struct {
	Label    string
	Channels []Channel // Ascending by Contact
}

// Names returns the channel names of the shaft in contact order.
func (s Shaft) Names() []string {
	names := make([]string, len(s.Channels))
	for i, ch := range s.Channels {
		names[i] = ch.Name
	}
	return names
}

// Grouping partitions channel names into shafts.
type Grouping struct {
	Shafts []Shaft // Ascending by Label
}

// Len returns the number of channels across all shafts.
func (g *Grouping) Len() int {
	n := 0
	for _, s := range g.Shafts {
		n += len(s.Channels)
	}
	return n
}

// Labels returns the shaft labels in order.
func (g *Grouping) Labels() []string {
	labels := make([]string, len(g.Shafts))
	for i, s := range g.Shafts {
		labels[i] = s.Label
	}
	return labels
}

// Shaft looks up a shaft by label.
func (g *Grouping) Shaft(label string) (Shaft, bool) {
	i := sort.Search(len(g.Shafts), func(i int) bool { return g.Shafts[i].Label >= label })
	if i < len(g.Shafts) && g.Shafts[i].Label == label {
		return g.Shafts[i], true
	}
	return Shaft{}, false
}

// Channels flattens the grouping, shaft by shaft.
func (g *Grouping) Channels() []Channel {
	channels := make([]Channel, 0, g.Len())
	for _, s := range g.Shafts {
		channels = append(channels, s.Channels...)
	}
	return channels
}

// Names flattens the grouping into channel names, shaft by shaft.
func (g *Grouping) Names() []string {
	names := make([]string, 0, g.Len())
	for _, s := range g.Shafts {
		names = append(names, s.Names()...)
	}
	return names
}

// GroupChannels partitions channel names into shafts. Every name must carry a
// contact number; use SplitUtility to set trigger and DC channels aside first.
func GroupChannels(names []string) (*Grouping, error) {
	return groupIndices(names, allIndices(len(names)))
}

// SplitUtility separates the indices of channels that carry a contact number
// from those that do not (triggers, DC inputs and the like).
func SplitUtility(names []string) (contacts, utility []int) {
	for i, name := range names {
		if strings.IndexFunc(name, isDigit) < 0 {
			utility = append(utility, i)
		} else {
			contacts = append(contacts, i)
		}
	}
	return contacts, utility
}

func groupIndices(names []string, indices []int) (*Grouping, error) {
	seen := make(map[string]struct{}, len(indices))
	byLabel := make(map[string]int)
	var shafts []Shaft

	for _, idx := range indices {
		name := names[idx]
		if _, dup := seen[name]; dup {
			return nil, &ParseError{Channel: name, Reason: "duplicate channel name"}
		}
		seen[name] = struct{}{}

		ch, err := parseChannel(name)
		if err != nil {
			return nil, err
		}
		ch.Index = idx

		i, ok := byLabel[ch.Shaft]
		if !ok {
			i = len(shafts)
			byLabel[ch.Shaft] = i
			shafts = append(shafts, Shaft{Label: ch.Shaft})
		}
		shafts[i].Channels = append(shafts[i].Channels, ch)
	}

	sort.Slice(shafts, func(i, j int) bool { return shafts[i].Label < shafts[j].Label })
	for _, s := range shafts {
		// Stable so that equal contact numbers (A1, A01) keep input order.
		sort.SliceStable(s.Channels, func(i, j int) bool { return s.Channels[i].Contact < s.Channels[j].Contact })
	}

	return &Grouping{Shafts: shafts}, nil
}

// parseChannel splits a name into its shaft label and contact number. The
// label is a run of ASCII letters, optionally ending in an apostrophe, and
// must be followed directly by the contact digits. For bipolar names (A1-A2)
// only the digits before the dash count.
func parseChannel(name string) (Channel, error) {
	first := strings.IndexFunc(name, isDigit)
	if first < 0 {
		return Channel{}, &ParseError{Channel: name, Reason: "no contact number"}
	}

	label := strings.TrimSuffix(name[:first], "'")
	if label == "" {
		return Channel{}, &ParseError{Channel: name, Reason: "no shaft label"}
	}
	if strings.IndexFunc(label, func(r rune) bool { return !isLetter(r) }) >= 0 {
		return Channel{}, &ParseError{Channel: name, Reason: "shaft label must be letters with an optional trailing apostrophe"}
	}

	digits := name[first:]
	if end := strings.IndexFunc(digits, func(r rune) bool { return !isDigit(r) }); end >= 0 {
		digits = digits[:end]
	}

	contact, err := strconv.Atoi(digits)
	if err != nil {
		return Channel{}, &ParseError{Channel: name, Reason: "contact number out of range"}
	}

	return Channel{Name: name, Shaft: name[:first], Contact: contact}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') }
