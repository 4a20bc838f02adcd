package match

// VerdictKind tags the outcome of evaluating a name against a rule set.
type VerdictKind int

const (
	VerdictNoRule VerdictKind = iota
	VerdictExcluded
	VerdictMatched
)

// Verdict is the Matcher's total result — matching itself never errors
// (spec §4.2 "Matching itself is total").
type Verdict struct {
	Kind   VerdictKind
	RuleID string
}

func NoRule() Verdict          { return Verdict{Kind: VerdictNoRule} }
func Excluded() Verdict        { return Verdict{Kind: VerdictExcluded} }
func Matched(id string) Verdict { return Verdict{Kind: VerdictMatched, RuleID: id} }
