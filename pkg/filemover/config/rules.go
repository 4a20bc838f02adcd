package config

import (
	"fmt"

	"filemover/pkg/filemover/match"
)

// PatternSpec is the JSON shape of a match.PatternSpec (spec §6 Rule
// JSON).
type PatternSpec struct {
	Kind            match.Kind `json:"kind"`
	Value           string     `json:"value"`
	IsExclude       bool       `json:"is_exclude"`
	CaseInsensitive bool       `json:"case_insensitive"`
}

// Rule is the JSON shape of a match.Rule. Field names and optionality
// follow spec §6 Rule JSON exactly: id, enabled, pattern, dest_root,
// template, policy, label (optional), priority.
type Rule struct {
	ID       string       `json:"id"`
	Enabled  bool         `json:"enabled"`
	Pattern  PatternSpec  `json:"pattern"`
	DestRoot string       `json:"dest_root"`
	Template string       `json:"template"`
	Policy   match.Policy `json:"policy"`
	Label    string       `json:"label,omitempty"`
	Priority int          `json:"priority"`
}

// toMatchRule converts a config.Rule to the engine's match.Rule, the
// declOrder field being filled in by match.Compile from slice position.
func (r Rule) toMatchRule() match.Rule {
	return match.Rule{
		ID:      r.ID,
		Enabled: r.Enabled,
		Pattern: match.PatternSpec{
			Kind:            r.Pattern.Kind,
			Value:           r.Pattern.Value,
			IsExclude:       r.Pattern.IsExclude,
			CaseInsensitive: r.Pattern.CaseInsensitive,
		},
		DestRoot: r.DestRoot,
		Template: r.Template,
		Policy:   r.Policy,
		Priority: r.Priority,
		Label:    r.Label,
	}
}

// validPolicies and validKinds guard against values json.Unmarshal would
// happily accept as strings but that the matcher has never heard of —
// caught here instead of surfacing as a cryptic BadRule later.
var (
	validPolicies = map[match.Policy]bool{
		match.PolicyAutoRename: true,
		match.PolicySkip:       true,
		match.PolicyOverwrite:  true,
	}
	validKinds = map[match.Kind]bool{
		match.KindGlob:     true,
		match.KindRegex:    true,
		match.KindContains: true,
	}
)

func (r Rule) validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule missing id")
	}
	if !validKinds[r.Pattern.Kind] {
		return fmt.Errorf("rule %q: unknown pattern kind %q", r.ID, r.Pattern.Kind)
	}
	if r.Priority < 0 {
		return fmt.Errorf("rule %q: priority must be non-negative", r.ID)
	}
	if !validPolicies[r.Policy] {
		return fmt.Errorf("rule %q: unknown policy %q", r.ID, r.Policy)
	}
	return nil
}

// ToMatchRules converts a rule slice to match.Rule, in the same
// declaration order, validating each rule's shape before conversion.
func ToMatchRules(rules []Rule) ([]match.Rule, error) {
	out := make([]match.Rule, 0, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		out = append(out, r.toMatchRule())
	}
	return out, nil
}
