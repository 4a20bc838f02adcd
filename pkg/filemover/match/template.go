package match

import (
	"path/filepath"
	"strings"
	"time"

	"filemover/pkg/filemover/core"
)

// TemplateMeta carries the per-folder values a destination template can
// reference (spec §4.4 Template expansion / §6 Template grammar).
type TemplateMeta struct {
	Name       string
	SourcePath string
	AsOf       time.Time // UTC; "plan-creation time" unless scan preview
}

var tokenNames = map[string]bool{
	"name": true, "label": true, "yyyy": true, "yyyyMM": true,
	"yyyyMMdd": true, "drive": true, "parent": true,
}

// ValidateTemplateTokens checks that every {token} in template is one
// ExpandTemplate knows how to fill, and that every '{' is closed. Called
// at rule-load time (spec §4.4: an unknown token is a load-time error,
// not a per-folder expansion failure) so a bad rule is rejected before
// the scanner ever runs.
func ValidateTemplateTokens(ruleID, template string) error {
	_, err := scanTemplateTokens(ruleID, template)
	return err
}

func scanTemplateTokens(ruleID, template string) ([]string, error) {
	var tokens []string
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				i++
			}
		case '{':
			end := i + 1
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end >= len(runes) {
				return nil, core.NewError(core.KindTemplateExpansion, ruleID, nil, "unbalanced '{' in template %q", template)
			}
			token := string(runes[i+1 : end])
			if !tokenNames[token] {
				return nil, core.NewError(core.KindTemplateExpansion, ruleID, nil, "unknown template token %q", token)
			}
			tokens = append(tokens, token)
			i = end
		}
	}
	return tokens, nil
}

// ExpandTemplate substitutes {token} placeholders in rule.Template,
// honoring backslash-escaped literal braces (spec §6 Template grammar).
// {label} with no rule label expands to the empty string (spec §9 Open
// Questions — resolved in DESIGN.md). Token validity was already checked
// by ValidateTemplateTokens at load time; any failure here means the
// template is unbalanced in a way load-time validation didn't catch.
func ExpandTemplate(rule *Rule, meta TemplateMeta) (string, error) {
	values := map[string]string{
		"name":     meta.Name,
		"label":    rule.Label,
		"yyyy":     meta.AsOf.UTC().Format("2006"),
		"yyyyMM":   meta.AsOf.UTC().Format("200601"),
		"yyyyMMdd": meta.AsOf.UTC().Format("20060102"),
		"drive":    strings.TrimSuffix(filepath.VolumeName(meta.SourcePath), ":"),
		"parent":   filepath.Base(filepath.Dir(meta.SourcePath)),
	}

	var out strings.Builder
	runes := []rune(rule.Template)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			if i+1 < len(runes) {
				out.WriteRune(runes[i+1])
				i++
			}
		case '{':
			end := i + 1
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end >= len(runes) {
				return "", core.NewError(core.KindTemplateExpansion, rule.ID, nil, "unbalanced '{' in template %q", rule.Template)
			}
			token := string(runes[i+1 : end])
			if !tokenNames[token] {
				return "", core.NewError(core.KindTemplateExpansion, rule.ID, nil, "unknown template token %q", token)
			}
			out.WriteString(values[token])
			i = end
		default:
			out.WriteRune(runes[i])
		}
	}

	dest := filepath.Join(rule.DestRoot, out.String())
	if dest == "" {
		return "", core.NewError(core.KindTemplateExpansion, rule.ID, nil, "template %q expanded to empty path", rule.Template)
	}
	return dest, nil
}
