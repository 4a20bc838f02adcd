package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRules() []Rule {
	return []Rule{
		{ID: "r1", Enabled: true, Priority: 10, Pattern: PatternSpec{Kind: KindGlob, Value: "*report*"}},
		{ID: "r2", Enabled: true, Priority: 5, Pattern: PatternSpec{Kind: KindContains, Value: "invoice", CaseInsensitive: true}},
		{ID: "exclude-temp", Enabled: true, Priority: 0, Pattern: PatternSpec{Kind: KindContains, Value: "_tmp", IsExclude: true}},
	}
}

func TestCompileAndEvaluate(t *testing.T) {
	cr, err := Compile(sampleRules())
	require.NoError(t, err)

	assert.Equal(t, Matched("r1"), cr.Evaluate("report_q1"))
	assert.Equal(t, Matched("r2"), cr.Evaluate("INVOICE_2024"))
	assert.Equal(t, NoRule(), cr.Evaluate("random_folder"))
}

func TestExcludeShortCircuits(t *testing.T) {
	rules := []Rule{
		{ID: "incl", Enabled: true, Priority: 1, Pattern: PatternSpec{Kind: KindContains, Value: "report"}},
		{ID: "excl", Enabled: true, Priority: 0, Pattern: PatternSpec{Kind: KindContains, Value: "report_tmp", IsExclude: true}},
	}
	cr, err := Compile(rules)
	require.NoError(t, err)

	assert.Equal(t, Excluded(), cr.Evaluate("report_tmp_folder"))
	assert.Equal(t, Matched("incl"), cr.Evaluate("report_final"))
}

func TestPriorityTieBreak(t *testing.T) {
	rules := []Rule{
		{ID: "low-priority-first", Enabled: true, Priority: 1, Pattern: PatternSpec{Kind: KindContains, Value: "report"}},
		{ID: "higher-priority", Enabled: true, Priority: 0, Pattern: PatternSpec{Kind: KindContains, Value: "report"}},
	}
	cr, err := Compile(rules)
	require.NoError(t, err)
	assert.Equal(t, Matched("higher-priority"), cr.Evaluate("report_final"))
}

func TestDisablingRuleNeverIncreasesHits(t *testing.T) {
	rules := sampleRules()
	full, err := Compile(rules)
	require.NoError(t, err)

	rules[0].Enabled = false
	reduced, err := Compile(rules)
	require.NoError(t, err)

	names := []string{"report_q1", "invoice_2024", "random_folder", "report_tmp"}
	for _, n := range names {
		fullHit := full.Evaluate(n).Kind == VerdictMatched
		reducedHit := reduced.Evaluate(n).Kind == VerdictMatched
		if reducedHit {
			assert.True(t, fullHit, "reduced rule set matched %q but full set did not", n)
		}
	}
}

func TestDuplicateRuleIDFailsLoad(t *testing.T) {
	rules := []Rule{
		{ID: "dup", Enabled: true, Pattern: PatternSpec{Kind: KindGlob, Value: "*"}},
		{ID: "dup", Enabled: true, Pattern: PatternSpec{Kind: KindGlob, Value: "*"}},
	}
	_, err := Compile(rules)
	assert.Error(t, err)
}

func TestInvalidRegexNamesOffendingRule(t *testing.T) {
	rules := []Rule{
		{ID: "bad-regex", Enabled: true, Pattern: PatternSpec{Kind: KindRegex, Value: "("}},
	}
	_, err := Compile(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-regex")
}

func TestLiteralRegexMatchesUnanchored(t *testing.T) {
	rules := []Rule{
		{ID: "literal-regex", Enabled: true, Pattern: PatternSpec{Kind: KindRegex, Value: "report"}},
	}
	cr, err := Compile(rules)
	require.NoError(t, err)

	v := cr.Evaluate("report_q1")
	assert.Equal(t, VerdictMatched, v.Kind)
	assert.Equal(t, "literal-regex", v.RuleID)
}

func TestUnknownTemplateTokenFailsLoadNotJustExpand(t *testing.T) {
	rules := []Rule{
		{ID: "bad-template", Enabled: true, Pattern: PatternSpec{Kind: KindGlob, Value: "*"}, Template: "{nope}"},
	}
	_, err := Compile(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-template")
}
