package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemover/pkg/filemover/match"
)

func TestToMatchRulesConvertsFields(t *testing.T) {
	rules := []Rule{
		{
			ID:      "a",
			Enabled: true,
			Pattern: PatternSpec{Kind: match.KindRegex, Value: "^x", IsExclude: true, CaseInsensitive: true},
			DestRoot: `C:\out`,
			Template: "{name}",
			Policy:   match.PolicyOverwrite,
			Label:    "archive",
			Priority: 3,
		},
	}

	converted, err := ToMatchRules(rules)
	require.NoError(t, err)
	require.Len(t, converted, 1)
	assert.Equal(t, "a", converted[0].ID)
	assert.Equal(t, match.KindRegex, converted[0].Pattern.Kind)
	assert.True(t, converted[0].Pattern.IsExclude)
	assert.Equal(t, match.PolicyOverwrite, converted[0].Policy)
}

func TestToMatchRulesRejectsMissingID(t *testing.T) {
	rules := []Rule{{Pattern: PatternSpec{Kind: match.KindGlob}, Policy: match.PolicySkip}}
	_, err := ToMatchRules(rules)
	assert.Error(t, err)
}

func TestToMatchRulesRejectsUnknownPatternKind(t *testing.T) {
	rules := []Rule{{ID: "a", Pattern: PatternSpec{Kind: "Fuzzy"}, Policy: match.PolicySkip}}
	_, err := ToMatchRules(rules)
	assert.Error(t, err)
}
