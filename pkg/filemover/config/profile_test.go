package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfileWithEmptyNameReturnsBase(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	require.NoError(t, err)

	resolved, err := doc.ResolveProfile("")
	require.NoError(t, err)
	assert.Equal(t, doc.Roots, resolved.Roots)
	assert.Equal(t, doc.Rules, resolved.Rules)
}

func TestResolveProfileOverlaysRootsAndOptions(t *testing.T) {
	raw := `{
		"roots": ["C:\\src"],
		"rules": [],
		"options": {"parallel_threads": 1},
		"profiles": [
			{"name": "fast", "roots": ["D:\\incoming"], "options": {"parallel_threads": 8}}
		]
	}`
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)

	resolved, err := doc.ResolveProfile("fast")
	require.NoError(t, err)
	assert.Equal(t, []string{`D:\incoming`}, resolved.Roots)
	assert.Equal(t, 8, resolved.Options.ParallelThreads)
}

func TestResolveProfileUnknownNameErrors(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	require.NoError(t, err)

	_, err = doc.ResolveProfile("nope")
	assert.Error(t, err)
}

func TestResolveProfileLoadsExternalRuleSet(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.json")
	rulesJSON := `[{
		"id": "reports",
		"enabled": true,
		"pattern": {"kind": "Glob", "value": "*report*", "is_exclude": false, "case_insensitive": true},
		"dest_root": "C:\\out",
		"template": "{name}",
		"policy": "Skip",
		"priority": 0
	}]`
	require.NoError(t, os.WriteFile(rulesPath, []byte(rulesJSON), 0o644))

	raw := `{
		"roots": ["C:\\src"],
		"rules": [],
		"options": {},
		"profiles": [{"name": "external", "rule_set_path": ` + quoteJSONPath(rulesPath) + `}]
	}`
	doc, err := ParseDocument([]byte(raw))
	require.NoError(t, err)

	resolved, err := doc.ResolveProfile("external")
	require.NoError(t, err)
	require.Len(t, resolved.Rules, 1)
	assert.Equal(t, "reports", resolved.Rules[0].ID)
}

// quoteJSONPath renders a filesystem path as a JSON string literal,
// escaping backslashes so Windows-style paths survive embedding in a
// hand-written JSON test fixture.
func quoteJSONPath(p string) string {
	escaped := ""
	for _, r := range p {
		if r == '\\' {
			escaped += `\\`
		} else {
			escaped += string(r)
		}
	}
	return `"` + escaped + `"`
}
