package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Profile is a named overlay onto the document's base roots, rules, and
// options, letting a single configuration file describe several
// scan/move setups (e.g. "Downloads cleanup" vs "Photo import") without
// duplicating the whole document. Not in the distilled rule schema;
// added because external collaborators need a way to select among
// several saved setups without re-parsing the file themselves.
type Profile struct {
	Name        string   `json:"name"`
	Roots       []string `json:"roots,omitempty"`
	RuleSetPath string   `json:"rule_set_path,omitempty"`
	Options     *Options `json:"options,omitempty"`
}

// ResolvedConfig is a Document with exactly one profile's overlay
// applied (or the document's base values, when no profile is named).
type ResolvedConfig struct {
	Roots   []string
	Rules   []Rule
	Options Options
}

// ResolveProfile applies the named profile's overlay onto the
// document's base roots/rules/options. A profile's Roots or Options,
// when set, replace the base wholesale; RuleSetPath, when set, replaces
// the base rule list by loading a standalone rules file. An empty name
// resolves the document's base configuration unmodified.
func (d *Document) ResolveProfile(name string) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{Roots: d.Roots, Rules: d.Rules, Options: d.Options}
	if name == "" {
		return resolved, nil
	}

	var profile *Profile
	for i := range d.Profiles {
		if d.Profiles[i].Name == name {
			profile = &d.Profiles[i]
			break
		}
	}
	if profile == nil {
		return nil, fmt.Errorf("config: unknown profile %q", name)
	}

	if len(profile.Roots) > 0 {
		resolved.Roots = profile.Roots
	}
	if profile.Options != nil {
		resolved.Options = *profile.Options
	}
	if profile.RuleSetPath != "" {
		rules, err := LoadRules(profile.RuleSetPath)
		if err != nil {
			return nil, fmt.Errorf("config: profile %q: %w", name, err)
		}
		resolved.Rules = rules
	}
	return resolved, nil
}

// LoadRules reads a standalone rules file: a bare JSON array of Rule
// objects, used by Profile.RuleSetPath and by the plan subcommand's
// --rules flag.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var rules []Rule
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode rules %s: %w", path, err)
	}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("rules %s: %w", path, err)
		}
	}
	return rules, nil
}
