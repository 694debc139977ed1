// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package reref_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenPSG/reref"
)

// partition reduces a grouping to shaft label -> ordered channel names.
func partition(g *reref.Grouping) map[string][]string {
	p := make(map[string][]string, len(g.Shafts))
	for _, s := range g.Shafts {
		p[s.Label] = s.Names()
	}
	return p
}

func TestGroupChannels(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		labels []string
		want   map[string][]string
	}{
		{
			name:   "two shafts",
			names:  []string{"A1", "A2", "A3", "B1", "B2"},
			labels: []string{"A", "B"},
			want:   map[string][]string{"A": {"A1", "A2", "A3"}, "B": {"B1", "B2"}},
		},
		{
			name:   "numeric contact order",
			names:  []string{"B10", "B2", "B1", "A3"},
			labels: []string{"A", "B"},
			want:   map[string][]string{"A": {"A3"}, "B": {"B1", "B2", "B10"}},
		},
		{
			name:   "apostrophe is a separate shaft",
			names:  []string{"A'2", "A1", "A'1", "A2"},
			labels: []string{"A", "A'"},
			want:   map[string][]string{"A": {"A1", "A2"}, "A'": {"A'1", "A'2"}},
		},
		{
			name:   "bipolar names use the first contact",
			names:  []string{"OF2-OF3", "OF1-OF2"},
			labels: []string{"OF"},
			want:   map[string][]string{"OF": {"OF1-OF2", "OF2-OF3"}},
		},
		{
			name:   "multi letter labels",
			names:  []string{"TP3", "HA1", "TP1", "HA2"},
			labels: []string{"HA", "TP"},
			want:   map[string][]string{"HA": {"HA1", "HA2"}, "TP": {"TP1", "TP3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := reref.GroupChannels(tt.names)
			require.NoError(t, err)

			assert.Equal(t, tt.labels, g.Labels())
			assert.Equal(t, len(tt.names), g.Len())
			if diff := cmp.Diff(tt.want, partition(g)); diff != "" {
				t.Errorf("partition mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroupChannelsKeepsInputIndex(t *testing.T) {
	names := []string{"B2", "A1", "B1"}
	g, err := reref.GroupChannels(names)
	require.NoError(t, err)

	for _, ch := range g.Channels() {
		assert.Equal(t, ch.Name, names[ch.Index])
	}

	b, ok := g.Shaft("B")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, []int{b.Channels[0].Contact, b.Channels[1].Contact})

	_, ok = g.Shaft("C")
	assert.False(t, ok)
}

func TestGroupChannelsStable(t *testing.T) {
	names := []string{"C'3", "A2", "C'1", "B12", "A1", "B3", "C'2", "B1-B2"}

	first, err := reref.GroupChannels(names)
	require.NoError(t, err)

	second, err := reref.GroupChannels(first.Names())
	require.NoError(t, err)

	if diff := cmp.Diff(partition(first), partition(second)); diff != "" {
		t.Errorf("regrouping changed the partition (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Names(), second.Names())
}

func TestGroupChannelsErrors(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		channel string
	}{
		{"no digit", []string{"A1", "TRIG"}, "TRIG"},
		{"no label", []string{"12"}, "12"},
		{"apostrophe only", []string{"'1"}, "'1"},
		{"dash in label", []string{"A1", "A-1"}, "A-1"},
		{"space in label", []string{"EEG A1"}, "EEG A1"},
		{"apostrophe inside label", []string{"A'B1"}, "A'B1"},
		{"duplicate", []string{"A1", "A2", "A1"}, "A1"},
		{"overflow", []string{"A99999999999999999999999"}, "A99999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reref.GroupChannels(tt.names)
			require.Error(t, err)

			var perr *reref.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.channel, perr.Channel)
			assert.Contains(t, err.Error(), tt.channel)
		})
	}
}

func TestSplitUtility(t *testing.T) {
	contacts, utility := reref.SplitUtility([]string{"A1", "TRIG", "DC01", "ECG", "B'2"})
	assert.Equal(t, []int{0, 2, 4}, contacts)
	assert.Equal(t, []int{1, 3}, utility)
}
