package plan

import (
	"fmt"
	"path/filepath"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/match"
)

// EditKind is the user-facing action a plan review can apply to a node
// (spec §4.4 Incremental revalidation).
type EditKind string

const (
	EditSetSkip      EditKind = "SetSkip"
	EditChangePolicy EditKind = "ChangePolicy"
	EditRename       EditKind = "Rename"
	EditExclude      EditKind = "Exclude"
)

// Edit is a single node-level revision made during plan review.
type Edit struct {
	NodeID       core.NodeID
	Kind         EditKind
	NewPolicy    match.Policy // ChangePolicy
	NewNameAfter string       // Rename
}

// ValidationDelta reports the nodes an Edit may have affected, plus a
// before/after summary diff (spec §4.4). ChangedNodeIDs lists the edited
// node, its materialized subtree, and every node whose path_after shares
// a prefix with the edited node's old or new path_after; it is not
// narrowed to nodes whose conflicts or kind actually changed, and a node
// outside that set whose conflicts changed is not listed.
type ValidationDelta struct {
	ChangedNodeIDs []core.NodeID
	SummaryBefore  Summary
	SummaryAfter   Summary
}

// ApplyEdit applies a node edit and re-runs cross-node conflict
// detection over every node of the plan (see revalidateAllConflicts);
// the edited node's subtree and the nodes whose path_after shares a
// prefix with its previous or new path_after are reported in the delta.
func (p *Planner) ApplyEdit(mp *MovePlan, edit Edit) (*ValidationDelta, error) {
	node, ok := mp.Nodes[edit.NodeID]
	if !ok {
		return nil, fmt.Errorf("unknown plan node %d", edit.NodeID)
	}

	before := mp.Summary
	priorPathAfter := node.PathAfter
	changed := map[core.NodeID]bool{edit.NodeID: true}

	switch edit.Kind {
	case EditSetSkip:
		node.Kind = KindSkip
	case EditExclude:
		node.Kind = KindNone
	case EditChangePolicy:
		// The override is per-node; the rule's own policy in the compiled
		// rule set is left untouched.
		node.Kind = p.reclassifyAfterPolicy(node, edit.NewPolicy)
	case EditRename:
		node.NameAfter = edit.NewNameAfter
		node.PathAfter = filepath.Join(filepath.Dir(node.PathAfter), edit.NewNameAfter)
		node.Kind = p.classify(node.PathBefore, node.PathAfter, true)
	}

	affected := p.affectedSubtree(mp, node)
	for _, other := range mp.allNodesSlice() {
		if other.ID == node.ID {
			continue
		}
		if sharesPrefix(other.PathAfter, priorPathAfter) || sharesPrefix(other.PathAfter, node.PathAfter) {
			affected = append(affected, other)
		}
	}

	p.revalidateAllConflicts(mp)
	for _, n := range affected {
		changed[n.ID] = true
	}

	mp.recomputeSummary()

	ids := make([]core.NodeID, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	return &ValidationDelta{ChangedNodeIDs: ids, SummaryBefore: before, SummaryAfter: mp.Summary}, nil
}

func (p *Planner) reclassifyAfterPolicy(node *PlanNode, newPolicy match.Policy) Kind {
	if newPolicy == match.PolicySkip {
		return KindSkip
	}
	if p.destExists(node.PathAfter) && newPolicy == match.PolicyOverwrite {
		node.Dangerous = true
	}
	return p.classify(node.PathBefore, node.PathAfter, true)
}

func (p *Planner) affectedSubtree(mp *MovePlan, node *PlanNode) []*PlanNode {
	var out []*PlanNode
	var walk func(id core.NodeID)
	walk = func(id core.NodeID) {
		n, ok := mp.Nodes[id]
		if !ok {
			return
		}
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range node.Children {
		walk(c)
	}
	return out
}

func (mp *MovePlan) allNodesSlice() []*PlanNode {
	out := make([]*PlanNode, 0, len(mp.Nodes))
	for _, n := range mp.Nodes {
		out = append(out, n)
	}
	return out
}

func sharesPrefix(a, b string) bool {
	return isWithin(a, b) || isWithin(b, a)
}

// revalidateAllConflicts re-runs NameExists/cycle detection, clearing and
// recomputing only the conflict kinds that are a function of other
// nodes' positions (NameExists, CycleDetected) — DestInsideSource and
// Permission are intrinsic to the node itself and were already decided
// when the node was built or edited. applyCrossNodeNameExists and
// detectCycles both scan every node in mp, not just the edit-affected
// subset, so every node they're about to re-scan must have its prior
// NameExists/CycleDetected conflicts cleared first — otherwise a node
// outside the subset keeps a stale conflict an edit elsewhere resolved,
// or gets the same conflict appended a second time.
func (p *Planner) revalidateAllConflicts(mp *MovePlan) {
	all := mp.allNodesSlice()
	for _, n := range all {
		n.Conflicts = filterConflicts(n.Conflicts, ConflictNameExists, ConflictCycleDetected)
	}
	reserved := map[string]bool{}
	for _, n := range all {
		if n.Kind != KindSkip {
			reserved[n.PathAfter] = true
		}
	}
	p.applyCrossNodeNameExists(all, reserved)
	detectCycles(all)
}

func filterConflicts(cs []Conflict, remove ...ConflictKind) []Conflict {
	var out []Conflict
	for _, c := range cs {
		skip := false
		for _, r := range remove {
			if c.Kind == r {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}
