package exec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gammazero/toposort"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/plan"
)

// rank groups plan nodes that may run concurrently, in the order they
// must be dispatched (spec §4.5 Ordering / Parallelism).
type rank []*plan.PlanNode

// buildRanks orders a plan's executable nodes into dependency-respecting
// ranks: a node whose destination sits inside another node's still-
// occupied source must wait for that source to be vacated first (spec
// §4.5 Ordering rule a). Within a rank, larger nodes sort first to
// front-load long operations (spec §4.5 Ordering rule b).
func buildRanks(mp *plan.MovePlan) ([]rank, error) {
	var nodes []*plan.PlanNode
	for _, n := range mp.Nodes {
		if n.Kind == plan.KindSkip || n.Kind == plan.KindNone {
			continue
		}
		nodes = append(nodes, n)
	}

	edges := make([]toposort.Edge, 0)
	before := map[core.NodeID][]core.NodeID{} // node -> nodes that must run after it
	for _, a := range nodes {
		for _, b := range nodes {
			if a.ID == b.ID {
				continue
			}
			if isWithin(b.PathAfter, a.PathBefore) {
				edges = append(edges, toposort.Edge{idKey(a.ID), idKey(b.ID)})
				before[a.ID] = append(before[a.ID], b.ID)
			}
		}
	}

	if len(edges) > 0 {
		if _, err := toposort.Toposort(edges); err != nil {
			return nil, fmt.Errorf("execution order: %w", err)
		}
	}

	depth := map[core.NodeID]int{}
	byID := map[core.NodeID]*plan.PlanNode{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	var assign func(id core.NodeID) int
	visiting := map[core.NodeID]bool{}
	assign = func(id core.NodeID) int {
		if d, ok := depth[id]; ok {
			return d
		}
		if visiting[id] {
			return 0 // cycle guard; real plan-level cycles were already caught at build time
		}
		visiting[id] = true
		max := -1
		for pred, succs := range before {
			for _, s := range succs {
				if s == id {
					if d := assign(pred); d > max {
						max = d
					}
				}
			}
		}
		visiting[id] = false
		depth[id] = max + 1
		return depth[id]
	}

	ranksByDepth := map[int]rank{}
	maxDepth := 0
	for _, n := range nodes {
		d := assign(n.ID)
		ranksByDepth[d] = append(ranksByDepth[d], n)
		if d > maxDepth {
			maxDepth = d
		}
	}

	out := make([]rank, 0, maxDepth+1)
	for d := 0; d <= maxDepth; d++ {
		r := ranksByDepth[d]
		sort.SliceStable(r, func(i, j int) bool {
			si, sj := int64(0), int64(0)
			if r[i].Size != nil {
				si = *r[i].Size
			}
			if r[j].Size != nil {
				sj = *r[j].Size
			}
			if si != sj {
				return si > sj
			}
			return r[i].PathBefore < r[j].PathBefore
		})
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

func idKey(id core.NodeID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// isWithin reports whether path is dir itself or a descendant of dir.
// Duplicated from plan's unexported helper of the same name: scheduling
// is an exec-package concern and plan.PlanNode exposes only path
// strings, not plan's internal containment helper.
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
