package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTemplateTokens(t *testing.T) {
	rule := &Rule{ID: "r1", DestRoot: `C:\out`, Template: `{yyyy}\{name}`, Label: "archived"}
	meta := TemplateMeta{Name: "report_q1", SourcePath: `C:\src\report_q1`, AsOf: time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)}

	dest, err := ExpandTemplate(rule, meta)
	require.NoError(t, err)
	assert.Equal(t, `C:\out\2026\report_q1`, dest)
}

func TestExpandTemplateUnknownTokenErrors(t *testing.T) {
	rule := &Rule{ID: "r1", DestRoot: `C:\out`, Template: `{bogus}`}
	_, err := ExpandTemplate(rule, TemplateMeta{Name: "x", SourcePath: `C:\x`, AsOf: time.Now()})
	require.Error(t, err)
}

func TestExpandTemplateEscapedBrace(t *testing.T) {
	rule := &Rule{ID: "r1", DestRoot: `C:\out`, Template: `\{literal\}-{name}`}
	dest, err := ExpandTemplate(rule, TemplateMeta{Name: "x", SourcePath: `C:\x`, AsOf: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, `C:\out\{literal}-x`, dest)
}

func TestExpandTemplateEmptyLabel(t *testing.T) {
	rule := &Rule{ID: "r1", DestRoot: `C:\out`, Template: `{label}{name}`}
	dest, err := ExpandTemplate(rule, TemplateMeta{Name: "x", SourcePath: `C:\x`, AsOf: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, `C:\out\x`, dest)
}
