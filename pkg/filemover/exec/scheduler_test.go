package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/plan"
)

func TestBuildRanksOrdersDependentNodes(t *testing.T) {
	// B's destination lands inside A's source, so A must vacate first.
	a := &plan.PlanNode{ID: 1, PathBefore: "src/a", PathAfter: "dst/a", Kind: plan.KindMove}
	b := &plan.PlanNode{ID: 2, PathBefore: "other/b", PathAfter: "src/a/b", Kind: plan.KindMove}

	mp := &plan.MovePlan{Nodes: map[core.NodeID]*plan.PlanNode{1: a, 2: b}}

	ranks, err := buildRanks(mp)
	require.NoError(t, err)
	require.Len(t, ranks, 2)
	assert.Equal(t, core.NodeID(1), ranks[0][0].ID)
	assert.Equal(t, core.NodeID(2), ranks[1][0].ID)
}

func TestBuildRanksGroupsIndependentNodesTogether(t *testing.T) {
	a := &plan.PlanNode{ID: 1, PathBefore: "src/a", PathAfter: "dst/a", Kind: plan.KindMove}
	b := &plan.PlanNode{ID: 2, PathBefore: "src/b", PathAfter: "dst/b", Kind: plan.KindMove}

	mp := &plan.MovePlan{Nodes: map[core.NodeID]*plan.PlanNode{1: a, 2: b}}

	ranks, err := buildRanks(mp)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	assert.Len(t, ranks[0], 2)
}

func TestBuildRanksSkipsNonExecutableNodes(t *testing.T) {
	skipped := &plan.PlanNode{ID: 1, PathBefore: "src/a", PathAfter: "dst/a", Kind: plan.KindSkip}
	excluded := &plan.PlanNode{ID: 2, PathBefore: "src/b", PathAfter: "dst/b", Kind: plan.KindNone}

	mp := &plan.MovePlan{Nodes: map[core.NodeID]*plan.PlanNode{1: skipped, 2: excluded}}

	ranks, err := buildRanks(mp)
	require.NoError(t, err)
	assert.Empty(t, ranks)
}

func TestBuildRanksOrdersLargerNodesFirstWithinARank(t *testing.T) {
	small := int64(10)
	large := int64(1000)
	a := &plan.PlanNode{ID: 1, PathBefore: "src/a", PathAfter: "dst/a", Kind: plan.KindMove, Size: &small}
	b := &plan.PlanNode{ID: 2, PathBefore: "src/b", PathAfter: "dst/b", Kind: plan.KindMove, Size: &large}

	mp := &plan.MovePlan{Nodes: map[core.NodeID]*plan.PlanNode{1: a, 2: b}}

	ranks, err := buildRanks(mp)
	require.NoError(t, err)
	require.Len(t, ranks, 1)
	require.Len(t, ranks[0], 2)
	assert.Equal(t, core.NodeID(2), ranks[0][0].ID)
}
