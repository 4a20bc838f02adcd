package plan

import "filemover/pkg/filemover/core"

// Summary aggregates a MovePlan's headline numbers (spec §3 PlanSummary).
type Summary struct {
	CountDirs   int
	CountFiles  int
	TotalBytes  *int64
	CrossVolume bool
	Conflicts   int
	Warnings    int
}

// MovePlan is the Planner's output: an ordered root list, the node map
// that owns every PlanNode, and a PlanSummary (spec §3).
type MovePlan struct {
	RootIDs []core.NodeID
	Nodes   map[core.NodeID]*PlanNode
	Summary Summary

	seq *core.IDSequence
}

// Node looks up a node by id; children are referenced by id rather than
// direct ownership, per spec §9 ("weak relation resolved by lookup").
func (p *MovePlan) Node(id core.NodeID) (*PlanNode, bool) {
	n, ok := p.Nodes[id]
	return n, ok
}

func (p *MovePlan) recomputeSummary() {
	var s Summary
	var total int64
	haveSize := false
	for _, n := range p.Nodes {
		if n.IsDir {
			s.CountDirs++
		} else {
			s.CountFiles++
		}
		if n.Size != nil {
			total += *n.Size
			haveSize = true
		}
		if n.Kind == KindCopyDelete {
			s.CrossVolume = true
		}
		s.Conflicts += len(n.Conflicts)
		s.Warnings += len(n.Warnings)
	}
	if haveSize {
		s.TotalBytes = &total
	}
	p.Summary = s
}
