// Package config loads the JSON configuration document external
// collaborators hand to the engine: roots, rules, scan options, and
// named profiles (spec §6 Configuration file).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"filemover/pkg/filemover/normalize"
	"filemover/pkg/filemover/scan"
)

// NormalizeFlags is the JSON shape of normalize.Flags.
type NormalizeFlags struct {
	Unicode    bool `json:"unicode"`
	Width      bool `json:"width"`
	Diacritics bool `json:"diacritics"`
	CaseFold   bool `json:"case_fold"`
}

func (f NormalizeFlags) toFlags() normalize.Flags {
	return normalize.Flags{Unicode: f.Unicode, Width: f.Width, Diacritics: f.Diacritics, CaseFold: f.CaseFold}
}

// Options is the JSON shape of scan.Options (spec §6 Configuration
// file, "options (ScanOptions fields)").
type Options struct {
	Normalize         NormalizeFlags `json:"normalize"`
	FollowJunctions   bool           `json:"follow_junctions"`
	SystemProtections bool           `json:"system_protections"`
	MaxDepth          int            `json:"max_depth"`
	ExcludedPaths     []string       `json:"excluded_paths,omitempty"`
	ParallelThreads   int            `json:"parallel_threads"`
}

// ToScanOptions converts to the engine's scan.Options.
func (o Options) ToScanOptions() scan.Options {
	return scan.Options{
		Normalize:         o.Normalize.toFlags(),
		FollowJunctions:   o.FollowJunctions,
		SystemProtections: o.SystemProtections,
		MaxDepth:          o.MaxDepth,
		ExcludedPaths:     o.ExcludedPaths,
		ParallelThreads:   o.ParallelThreads,
	}
}

// Document is the top-level configuration file shape. Unknown keys are
// rejected at load (spec §6, "Unknown keys are rejected" — deliberate,
// see spec §8 "Dynamic typing / open records").
type Document struct {
	Roots    []string  `json:"roots"`
	Rules    []Rule    `json:"rules"`
	Options  Options   `json:"options"`
	Profiles []Profile `json:"profiles,omitempty"`
}

// LoadDocument reads and strictly decodes a configuration document from
// path. Every nested object (including profile overlays) rejects
// unknown keys, matching the top-level contract.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseDocument(data)
}

// ParseDocument decodes a configuration document already read into
// memory, separated from LoadDocument so callers with an in-process
// config source (tests, embedded defaults) don't need a real file.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if len(doc.Roots) == 0 {
		return nil, fmt.Errorf("config: at least one root is required")
	}
	for _, r := range doc.Rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	seen := map[string]bool{}
	for _, p := range doc.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("config: profile missing name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("config: duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return &doc, nil
}
