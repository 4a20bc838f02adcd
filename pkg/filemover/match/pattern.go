// Package match compiles a Rule set once and evaluates it against
// normalized folder names, per spec §4.2.
package match

// Kind is the tag of a PatternSpec's matching strategy.
type Kind string

const (
	KindGlob     Kind = "Glob"
	KindRegex    Kind = "Regex"
	KindContains Kind = "Contains"
)

// PatternSpec is compiled once per rule at rule-set load time.
type PatternSpec struct {
	Kind            Kind
	Value           string
	IsExclude       bool
	CaseInsensitive bool
}

// Policy is a rule's conflict-resolution strategy at plan time.
type Policy string

const (
	PolicyAutoRename Policy = "AutoRename"
	PolicySkip       Policy = "Skip"
	PolicyOverwrite  Policy = "Overwrite"
)

// Rule is a user-declared matching-and-destination directive (spec §3).
type Rule struct {
	ID       string
	Enabled  bool
	Pattern  PatternSpec
	DestRoot string
	Template string
	Policy   Policy
	Priority int
	Label    string

	// declOrder is the rule's position in the original rule-set slice,
	// used as the tie-break for equal-priority rules and for stable
	// ordering within an aggregated matcher bundle.
	declOrder int
}
