// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config loads referencing jobs from YAML.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OpenPSG/reref"
)

// Config describes one referencing job.
type Config struct {
	Scheme             string   `yaml:"scheme"`              // car, monopolar, esr, bipolar, laplacian, gwr
	References         []string `yaml:"references"`          // Monopolar reference channels
	ExcludeShafts      []string `yaml:"exclude_shafts"`      // Shafts dropped by grouped schemes
	PassthroughUtility bool     `yaml:"passthrough_utility"` // Keep trigger/DC channels unmodified
	Tissue             Tissue   `yaml:"tissue"`              // Static GWR classification
	Concurrency        int      `yaml:"concurrency"`         // Shafts processed in parallel, 0 for GOMAXPROCS
}

// Tissue lists gray and white matter channels.
type Tissue struct {
	Gray  []string `yaml:"gray"`
	White []string `yaml:"white"`
}

var schemeNames = map[string]reref.Scheme{
	"car":       reref.CAR,
	"monopolar": reref.Monopolar,
	"esr":       reref.ESR,
	"bipolar":   reref.Bipolar,
	"laplacian": reref.Laplacian,
	"gwr":       reref.GWR,
}

// ParseScheme maps a scheme name (any case) to a reref.Scheme.
func ParseScheme(name string) (reref.Scheme, error) {
	s, ok := schemeNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		known := make([]string, 0, len(schemeNames))
		for k := range schemeNames {
			known = append(known, k)
		}
		sort.Strings(known)
		return 0, &reref.SchemeParameterError{
			Param:  name,
			Reason: "unknown scheme, expected one of " + strings.Join(known, ", "),
		}
	}
	return s, nil
}

// Load reads a job file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a job.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the job names a scheme and carries the parameters it needs.
func (c *Config) Validate() error {
	scheme, err := ParseScheme(c.Scheme)
	if err != nil {
		return err
	}

	switch scheme {
	case reref.Monopolar:
		if len(c.References) == 0 {
			return &reref.SchemeParameterError{Scheme: scheme, Param: "references", Reason: "at least one reference channel is required"}
		}
	case reref.GWR:
		if len(c.Tissue.Gray)+len(c.Tissue.White) == 0 {
			return &reref.SchemeParameterError{Scheme: scheme, Param: "tissue", Reason: "no gray or white matter channels listed"}
		}
		for _, name := range c.Tissue.Gray {
			for _, other := range c.Tissue.White {
				if name == other {
					return &reref.SchemeParameterError{Scheme: scheme, Param: name, Reason: "channel listed as both gray and white matter"}
				}
			}
		}
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("invalid concurrency %d", c.Concurrency)
	}
	return nil
}

// ReferenceScheme returns the parsed scheme. Call Validate first.
func (c *Config) ReferenceScheme() reref.Scheme {
	s, _ := ParseScheme(c.Scheme)
	return s
}

// Classifier returns the static tissue table of the job.
func (c *Config) Classifier() reref.LabelTable {
	table := make(reref.LabelTable, len(c.Tissue.Gray)+len(c.Tissue.White))
	for _, name := range c.Tissue.Gray {
		table[name] = reref.Gray
	}
	for _, name := range c.Tissue.White {
		table[name] = reref.White
	}
	return table
}

// Params converts the job into engine parameters.
func (c *Config) Params() reref.Params {
	p := reref.Params{
		References:         c.References,
		ExcludeShafts:      c.ExcludeShafts,
		PassthroughUtility: c.PassthroughUtility,
	}
	if c.ReferenceScheme() == reref.GWR {
		p.Classifier = c.Classifier()
	}
	return p
}

// EngineOptions returns the engine options the job asks for.
func (c *Config) EngineOptions() []reref.Option {
	if c.Concurrency > 0 {
		return []reref.Option{reref.WithConcurrency(c.Concurrency)}
	}
	return nil
}
