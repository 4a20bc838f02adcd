package match

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/gobwas/glob"
	"filemover/pkg/filemover/core"
)

// candidate is a rule that matched, collected so that priority +
// declaration order can break the tie when several rules match.
type candidate struct {
	rule *Rule
}

func lowestPriority(cands []candidate) *Rule {
	if len(cands) == 0 {
		return nil
	}
	best := cands[0].rule
	for _, c := range cands[1:] {
		if c.rule.Priority < best.Priority ||
			(c.rule.Priority == best.Priority && c.rule.declOrder < best.declOrder) {
			best = c.rule
		}
	}
	return best
}

// containsGroup aggregates Contains patterns into one Aho-Corasick
// automaton per case-sensitivity class, so a linear-time scan of the
// input finds every matching rule at once (spec §4.2 Compilation).
type containsGroup struct {
	sensitiveMatcher   *ahocorasick.Matcher
	sensitiveRules     [][]*Rule // parallel to the dictionary passed to the matcher
	insensitiveMatcher *ahocorasick.Matcher
	insensitiveRules   [][]*Rule
}

func buildContainsGroup(rules []*Rule) *containsGroup {
	g := &containsGroup{}
	var sensDict, insensDict []string
	sensIndex := map[string]int{}
	insensIndex := map[string]int{}

	for _, r := range rules {
		if r.Pattern.Kind != KindContains {
			continue
		}
		if r.Pattern.CaseInsensitive {
			key := strings.ToLower(r.Pattern.Value)
			idx, ok := insensIndex[key]
			if !ok {
				idx = len(insensDict)
				insensDict = append(insensDict, key)
				g.insensitiveRules = append(g.insensitiveRules, nil)
				insensIndex[key] = idx
			}
			g.insensitiveRules[idx] = append(g.insensitiveRules[idx], r)
		} else {
			key := r.Pattern.Value
			idx, ok := sensIndex[key]
			if !ok {
				idx = len(sensDict)
				sensDict = append(sensDict, key)
				g.sensitiveRules = append(g.sensitiveRules, nil)
				sensIndex[key] = idx
			}
			g.sensitiveRules[idx] = append(g.sensitiveRules[idx], r)
		}
	}

	if len(sensDict) > 0 {
		g.sensitiveMatcher = ahocorasick.NewStringMatcher(sensDict)
	}
	if len(insensDict) > 0 {
		g.insensitiveMatcher = ahocorasick.NewStringMatcher(insensDict)
	}
	return g
}

func (g *containsGroup) match(name string) []candidate {
	var out []candidate
	if g.sensitiveMatcher != nil {
		for _, idx := range g.sensitiveMatcher.Match([]byte(name)) {
			for _, r := range g.sensitiveRules[idx] {
				out = append(out, candidate{rule: r})
			}
		}
	}
	if g.insensitiveMatcher != nil {
		lower := strings.ToLower(name)
		for _, idx := range g.insensitiveMatcher.Match([]byte(lower)) {
			for _, r := range g.insensitiveRules[idx] {
				out = append(out, candidate{rule: r})
			}
		}
	}
	return out
}

// globGroup aggregates Glob patterns compiled once at load time.
type globGroup struct {
	entries []globEntry
}

type globEntry struct {
	g               glob.Glob
	caseInsensitive bool
	rule            *Rule
}

func buildGlobGroup(rules []*Rule) (*globGroup, error) {
	g := &globGroup{}
	for _, r := range rules {
		if r.Pattern.Kind != KindGlob {
			continue
		}
		pattern := r.Pattern.Value
		if r.Pattern.CaseInsensitive {
			pattern = strings.ToLower(pattern)
		}
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, core.NewError(core.KindBadRule, r.ID, err, "invalid glob pattern %q", r.Pattern.Value)
		}
		g.entries = append(g.entries, globEntry{g: compiled, caseInsensitive: r.Pattern.CaseInsensitive, rule: r})
	}
	return g, nil
}

func (g *globGroup) match(name string) []candidate {
	var out []candidate
	lower := strings.ToLower(name)
	for _, e := range g.entries {
		subject := name
		if e.caseInsensitive {
			subject = lower
		}
		if e.g.Match(subject) {
			out = append(out, candidate{rule: e.rule})
		}
	}
	return out
}

// regexGroup aggregates compiled Regex patterns with a literal-prefix
// prefilter drawn from regexp.Regexp.LiteralPrefix, per spec §4.2
// ("prefix/length prefilters where extractable").
type regexGroup struct {
	entries []regexEntry
}

type regexEntry struct {
	re     *regexp.Regexp
	prefix string
	rule   *Rule
}

func buildRegexGroup(rules []*Rule) (*regexGroup, error) {
	g := &regexGroup{}
	for _, r := range rules {
		if r.Pattern.Kind != KindRegex {
			continue
		}
		pattern := r.Pattern.Value
		if r.Pattern.CaseInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, core.NewError(core.KindBadRule, r.ID, err, "invalid regex pattern %q", r.Pattern.Value)
		}
		prefix, _ := re.LiteralPrefix()
		g.entries = append(g.entries, regexEntry{re: re, prefix: prefix, rule: r})
	}
	return g, nil
}

func (g *regexGroup) match(name string) []candidate {
	var out []candidate
	for _, e := range g.entries {
		// LiteralPrefix's "complete" flag only says the pattern contains
		// no metacharacters — regexp.MatchString is still unanchored, so
		// a literal pattern like "report" must still match "report_q1".
		// The prefix is a sound prefilter either way, exact or not.
		if e.prefix != "" && !strings.Contains(name, e.prefix) {
			continue
		}
		if e.re.MatchString(name) {
			out = append(out, candidate{rule: e.rule})
		}
	}
	return out
}

// bundle groups a set of rules (either the exclude set or the inclusive
// set) into its three aggregated matchers, probed Contains, Glob, Regex
// in that order (spec §4.2 Evaluation order).
type bundle struct {
	contains *containsGroup
	globs    *globGroup
	regexes  *regexGroup
}

func buildBundle(rules []*Rule) (*bundle, error) {
	globs, err := buildGlobGroup(rules)
	if err != nil {
		return nil, err
	}
	regexes, err := buildRegexGroup(rules)
	if err != nil {
		return nil, err
	}
	return &bundle{
		contains: buildContainsGroup(rules),
		globs:    globs,
		regexes:  regexes,
	}, nil
}

// evaluate probes Contains, then Glob, then Regex, returning the winner
// of the first non-empty candidate set.
func (b *bundle) evaluate(name string) *Rule {
	if cands := b.contains.match(name); len(cands) > 0 {
		return lowestPriority(cands)
	}
	if cands := b.globs.match(name); len(cands) > 0 {
		return lowestPriority(cands)
	}
	if cands := b.regexes.match(name); len(cands) > 0 {
		return lowestPriority(cands)
	}
	return nil
}

// CompiledRuleSet is a rule set prepared once (spec §4.2 Compilation)
// and safe to share across scanner worker goroutines — it is read-only
// after Compile returns.
type CompiledRuleSet struct {
	rulesByID map[string]*Rule
	excludes  *bundle
	inclusive *bundle
}

// Compile builds a CompiledRuleSet from a rule slice, in declaration
// order. Disabled rules are dropped before compilation. Invalid regex or
// glob patterns fail the whole load, naming the offending rule id (spec
// §4.2 Errors).
func Compile(rules []Rule) (*CompiledRuleSet, error) {
	rulesByID := make(map[string]*Rule, len(rules))
	var excludeRules, inclusiveRules []*Rule

	for i := range rules {
		r := rules[i]
		r.declOrder = i
		if !r.Enabled {
			continue
		}
		if _, dup := rulesByID[r.ID]; dup {
			return nil, core.NewError(core.KindDuplicate, r.ID, nil, "duplicate rule id")
		}
		if err := ValidateTemplateTokens(r.ID, r.Template); err != nil {
			return nil, err
		}
		stored := &r
		rulesByID[r.ID] = stored
		if r.Pattern.IsExclude {
			excludeRules = append(excludeRules, stored)
		} else {
			inclusiveRules = append(inclusiveRules, stored)
		}
	}

	// Ascending priority, declaration order tie-break — sorting here
	// makes lowestPriority's linear scan unnecessary for ties but we
	// keep it for correctness regardless of build-time ordering.
	sort.SliceStable(inclusiveRules, func(i, j int) bool {
		return inclusiveRules[i].Priority < inclusiveRules[j].Priority
	})

	excludeBundle, err := buildBundle(excludeRules)
	if err != nil {
		return nil, err
	}
	inclusiveBundle, err := buildBundle(inclusiveRules)
	if err != nil {
		return nil, err
	}

	return &CompiledRuleSet{
		rulesByID: rulesByID,
		excludes:  excludeBundle,
		inclusive: inclusiveBundle,
	}, nil
}

// Rule looks up a compiled rule by id.
func (c *CompiledRuleSet) Rule(id string) (*Rule, bool) {
	r, ok := c.rulesByID[id]
	return r, ok
}

// Evaluate matches a normalized folder name against the compiled rule
// set: exclude bundle first, then the inclusive bundle (spec §4.2
// Evaluation order). name and, when a rule targets a relative path,
// relPath must both already be normalized by the caller.
func (c *CompiledRuleSet) Evaluate(name string) Verdict {
	if r := c.excludes.evaluate(name); r != nil {
		return Excluded()
	}
	if r := c.inclusive.evaluate(name); r != nil {
		return Matched(r.ID)
	}
	return NoRule()
}

// RuleCount returns the number of enabled rules loaded, for diagnostics.
func (c *CompiledRuleSet) RuleCount() int { return len(c.rulesByID) }
