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
	"sync"
)

// Tissue is the anatomical label of a contact.
type Tissue int

const (
	TissueUnknown Tissue = iota
	Gray
	White
)

func (t Tissue) String() string {
	switch t {
	case Gray:
		return "gray"
	case White:
		return "white"
	default:
		return "unknown"
	}
}

// ParseTissue maps "gray"/"grey" and "white" (any case) to a Tissue. Anything
// else is TissueUnknown.
func ParseTissue(s string) Tissue {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gray", "grey", "gm":
		return Gray
	case "white", "wm":
		return White
	default:
		return TissueUnknown
	}
}

// Classifier labels channels as gray or white matter. Implementations may hit
// the disk or another process.
type Classifier interface {
	Classify(channel string) (Tissue, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(channel string) (Tissue, error)

// Classify calls f(channel).
func (f ClassifierFunc) Classify(channel string) (Tissue, error) { return f(channel) }

// LabelTable is a fixed channel to tissue mapping. Channels missing from the
// table are TissueUnknown.
type LabelTable map[string]Tissue

// Classify looks the channel up in the table.
func (lt LabelTable) Classify(channel string) (Tissue, error) {
	return lt[channel], nil
}

// CachedClassifier memoizes the labels returned by another Classifier.
// Failed lookups are not cached.
type CachedClassifier struct {
	next   Classifier
	mu     sync.RWMutex
	labels map[string]Tissue
}

// NewCachedClassifier wraps c with a per-channel cache.
func NewCachedClassifier(c Classifier) *CachedClassifier {
	return &CachedClassifier{next: c, labels: make(map[string]Tissue)}
}

// Classify returns the cached label, consulting the wrapped classifier on a miss.
func (cc *CachedClassifier) Classify(channel string) (Tissue, error) {
	cc.mu.RLock()
	t, ok := cc.labels[channel]
	cc.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := cc.next.Classify(channel)
	if err != nil {
		return TissueUnknown, err
	}

	cc.mu.Lock()
	cc.labels[channel] = t
	cc.mu.Unlock()
	return t, nil
}

// Reset drops every cached label.
func (cc *CachedClassifier) Reset() {
	cc.mu.Lock()
	cc.labels = make(map[string]Tissue)
	cc.mu.Unlock()
}

// classifyAll resolves the tissue of every channel exactly once. All unknown
// channels are reported together.
func classifyAll(c Classifier, channels []Channel) (map[string]Tissue, error) {
	labels := make(map[string]Tissue, len(channels))
	var unknown []string
	for _, ch := range channels {
		t, err := c.Classify(ch.Name)
		if err != nil {
			return nil, &AnatomicalLookupError{Channels: []string{ch.Name}, Err: err}
		}
		switch t {
		case Gray, White:
			labels[ch.Name] = t
		case TissueUnknown:
			unknown = append(unknown, ch.Name)
		default:
			return nil, &AnatomicalLookupError{Channels: []string{ch.Name}, Err: fmt.Errorf("invalid tissue %d", int(t))}
		}
	}
	if len(unknown) > 0 {
		return nil, &AnatomicalLookupError{Channels: unknown}
	}
	return labels, nil
}
