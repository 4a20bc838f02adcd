package plan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/match"
	"filemover/pkg/filemover/scan"

	"github.com/rs/zerolog"
)

// BuildOptions controls plan construction (spec §4.4).
type BuildOptions struct {
	EnableCrossVolume bool
	AsOf              time.Time // UTC time used for template tokens; defaults to time.Now()
}

// Planner builds MovePlans from selected scan hits (spec §4.4 Contract).
// It is single-threaded: the caller serializes Build/revalidate calls.
type Planner struct {
	fs     fsx.FileSystem
	rules  *match.CompiledRuleSet
	logger zerolog.Logger
}

// New builds a Planner bound to a filesystem and compiled rule set.
func New(fs fsx.FileSystem, rules *match.CompiledRuleSet, logger zerolog.Logger) *Planner {
	return &Planner{fs: fs, rules: rules, logger: logger}
}

// Build constructs a MovePlan from a selected hit list (spec §4.4).
// Hits without a matched rule are ignored — review/selection happens
// upstream of the Planner.
func (p *Planner) Build(ctx context.Context, hits []scan.FolderHit, opts BuildOptions) (*MovePlan, error) {
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}

	selected := make([]scan.FolderHit, 0, len(hits))
	for _, h := range hits {
		if h.MatchedRule != "" {
			selected = append(selected, h)
		}
	}

	// Deterministic ordering: (rule priority, path lexicographic) — spec
	// §4.4 Determinism.
	sort.SliceStable(selected, func(i, j int) bool {
		ri, _ := p.rules.Rule(selected[i].MatchedRule)
		rj, _ := p.rules.Rule(selected[j].MatchedRule)
		pi, pj := 0, 0
		if ri != nil {
			pi = ri.Priority
		}
		if rj != nil {
			pj = rj.Priority
		}
		if pi != pj {
			return pi < pj
		}
		return selected[i].SourcePath < selected[j].SourcePath
	})

	mp := &MovePlan{
		Nodes: make(map[core.NodeID]*PlanNode),
		seq:   core.NewIDSequence(),
	}

	reserved := map[string]bool{} // destinations already claimed this build, for AutoRename
	var allNodes []*PlanNode

	for _, h := range selected {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule, ok := p.rules.Rule(h.MatchedRule)
		if !ok {
			continue
		}
		node, err := p.buildNode(h, rule, opts, reserved)
		if err != nil {
			return nil, err
		}
		node.ID = mp.seq.Next()
		mp.Nodes[node.ID] = node
		mp.RootIDs = append(mp.RootIDs, node.ID)
		allNodes = append(allNodes, node)
	}

	detectCycles(allNodes)
	p.applyCrossNodeNameExists(allNodes, reserved)
	if err := p.applyNoSpace(allNodes); err != nil {
		return nil, err
	}

	mp.recomputeSummary()
	return mp, nil
}

// buildNode classifies one hit into a PlanNode: operation kind,
// NameExists resolution, DestInsideSource check (spec §4.4 Operation
// classification / Conflict detection).
func (p *Planner) buildNode(h scan.FolderHit, rule *match.Rule, opts BuildOptions, reserved map[string]bool) (*PlanNode, error) {
	dest, err := match.ExpandTemplate(rule, match.TemplateMeta{Name: h.FolderName, SourcePath: h.SourcePath, AsOf: opts.AsOf})
	if err != nil {
		return nil, err
	}

	node := &PlanNode{
		IsDir:      true,
		NameBefore: h.FolderName,
		PathBefore: h.SourcePath,
		NameAfter:  filepath.Base(dest),
		PathAfter:  dest,
		RuleID:     rule.ID,
		Warnings:   append([]scan.Warning{}, h.Warnings...),
		Size:       h.SizeBytes,
	}

	if isDescendant(dest, h.SourcePath) {
		node.Conflicts = append(node.Conflicts, Conflict{Kind: ConflictDestInsideSource})
		node.Kind = KindSkip
		return node, nil
	}

	// NameExists against the live filesystem or a destination already
	// claimed by an earlier node of this build.
	if p.destExists(dest) || reserved[dest] {
		resolved, conflict, dangerous := p.resolveNameExists(rule, dest, reserved)
		node.PathAfter = resolved
		node.NameAfter = filepath.Base(resolved)
		node.Dangerous = dangerous
		if conflict != nil {
			node.Conflicts = append(node.Conflicts, *conflict)
		}
		if rule.Policy == match.PolicySkip {
			node.Kind = KindSkip
			reserved[dest] = true
			return node, nil
		}
	}
	reserved[node.PathAfter] = true

	node.Kind = p.classify(h.SourcePath, node.PathAfter, opts.EnableCrossVolume)
	if node.Kind == KindCopyDelete {
		node.Warnings = appendWarningOnce(node.Warnings, scan.WarningCrossVolume)
	}
	// scan.WarningAclDiffers is never attached by the scanner (no portable
	// ACL inspection), so this branch is currently unreachable.
	if hasWarning(node.Warnings, scan.WarningAclDiffers) {
		node.Conflicts = append(node.Conflicts, Conflict{Kind: ConflictPermission, RequiredPermission: "write"})
	}

	return node, nil
}

func hasWarning(ws []scan.Warning, w scan.Warning) bool {
	for _, existing := range ws {
		if existing == w {
			return true
		}
	}
	return false
}

func appendWarningOnce(ws []scan.Warning, w scan.Warning) []scan.Warning {
	if hasWarning(ws, w) {
		return ws
	}
	return append(ws, w)
}

func (p *Planner) destExists(dest string) bool {
	_, err := p.fs.Stat(dest)
	return err == nil
}

// resolveNameExists applies the rule's conflict policy to an occupied
// destination (spec §4.4 Conflict detection: NameExists).
func (p *Planner) resolveNameExists(rule *match.Rule, dest string, reserved map[string]bool) (string, *Conflict, bool) {
	switch rule.Policy {
	case match.PolicyOverwrite:
		return dest, &Conflict{Kind: ConflictNameExists, ExistingPath: dest}, true
	case match.PolicySkip:
		return dest, &Conflict{Kind: ConflictNameExists, ExistingPath: dest}, false
	default: // AutoRename
		dir := filepath.Dir(dest)
		base := filepath.Base(dest)
		ext := filepath.Ext(base)
		stem := base[:len(base)-len(ext)]
		for n := 2; ; n++ {
			candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
			if !p.destExists(candidate) && !reserved[candidate] {
				return candidate, nil, false
			}
		}
	}
}

// classify implements spec §4.4 Operation classification.
func (p *Planner) classify(src, dest string, enableCrossVolume bool) Kind {
	srcParent := filepath.Dir(src)
	destParent := filepath.Dir(dest)
	if srcParent == destParent && filepath.Base(src) != filepath.Base(dest) {
		return KindRename
	}

	srcVol, _ := p.fs.VolumeID(src)
	destVol, _ := p.fs.VolumeID(dest)
	if srcVol == destVol {
		return KindMove
	}
	if enableCrossVolume {
		return KindCopyDelete
	}
	return KindSkip
}

// isDescendant reports whether dest is a strict descendant of src.
func isDescendant(dest, src string) bool {
	src, dest = filepath.Clean(src), filepath.Clean(dest)
	if src == dest {
		return false
	}
	return isWithin(dest, src)
}

// detectCycles implements spec §4.4 CycleDetected: across plan nodes,
// A.after inside B.before while B.after inside A.before — both sides
// Skip.
func detectCycles(nodes []*PlanNode) {
	for i, a := range nodes {
		for j, b := range nodes {
			if i >= j {
				continue
			}
			if isWithin(a.PathAfter, b.PathBefore) && isWithin(b.PathAfter, a.PathBefore) {
				a.Conflicts = append(a.Conflicts, Conflict{Kind: ConflictCycleDetected})
				b.Conflicts = append(b.Conflicts, Conflict{Kind: ConflictCycleDetected})
				a.Kind, b.Kind = KindSkip, KindSkip
			}
		}
	}
}

// isWithin reports whether path is dir itself or a descendant of dir.
func isWithin(path, dir string) bool {
	path, dir = filepath.Clean(path), filepath.Clean(dir)
	if path == dir {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// applyCrossNodeNameExists flags NameExists conflicts between two plan
// nodes that both resolved to the same path_after. During Build this is
// only reachable for Overwrite-policy nodes, since AutoRename/Skip
// already avoided collisions against `reserved`; after ApplyEdit a
// renamed node of any policy can collide.
func (p *Planner) applyCrossNodeNameExists(nodes []*PlanNode, reserved map[string]bool) {
	seen := map[string]*PlanNode{}
	for _, n := range nodes {
		if n.Kind == KindSkip {
			continue
		}
		if other, exists := seen[n.PathAfter]; exists {
			if !n.hasConflictKind(ConflictNameExists) {
				n.Conflicts = append(n.Conflicts, Conflict{Kind: ConflictNameExists, ExistingPath: other.PathAfter})
			}
			if !other.hasConflictKind(ConflictNameExists) {
				other.Conflicts = append(other.Conflicts, Conflict{Kind: ConflictNameExists, ExistingPath: n.PathAfter})
			}
		} else {
			seen[n.PathAfter] = n
		}
	}
}

// applyNoSpace implements spec §4.4 NoSpace: reported when a
// destination volume's free space is less than the sum of sizes of
// CopyDelete moves targeting it.
func (p *Planner) applyNoSpace(nodes []*PlanNode) error {
	required := map[string]uint64{}
	for _, n := range nodes {
		if n.Kind != KindCopyDelete || n.Size == nil {
			continue
		}
		vol, err := p.fs.VolumeID(n.PathAfter)
		if err != nil {
			continue
		}
		required[vol] += uint64(*n.Size)
	}
	for vol, need := range required {
		var sample *PlanNode
		for _, n := range nodes {
			if n.Kind == KindCopyDelete {
				if v, _ := p.fs.VolumeID(n.PathAfter); v == vol {
					sample = n
					break
				}
			}
		}
		if sample == nil {
			continue
		}
		free, err := p.fs.FreeSpace(sample.PathAfter)
		if err != nil {
			continue
		}
		if free < need {
			for _, n := range nodes {
				if n.Kind == KindCopyDelete {
					if v, _ := p.fs.VolumeID(n.PathAfter); v == vol {
						n.Conflicts = append(n.Conflicts, Conflict{Kind: ConflictNoSpace, Required: need, Available: free})
					}
				}
			}
		}
	}
	return nil
}
