package exec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/plan"
)

func TestBuildSimReportEstimatesCostAndPermissions(t *testing.T) {
	size := int64(copyDeleteBytesPerSec) // ~1s of copy time at the model's assumed throughput
	mp := &plan.MovePlan{
		Nodes: map[core.NodeID]*plan.PlanNode{
			1: {ID: 1, Kind: plan.KindMove, PathBefore: "a", PathAfter: "b"},
			2: {ID: 2, Kind: plan.KindCopyDelete, PathBefore: "c", PathAfter: "d", Size: &size},
			3: {ID: 3, Kind: plan.KindSkip, PathBefore: "e", PathAfter: "f"},
		},
	}

	report := BuildSimReport(mp)
	assert.Greater(t, report.EstimatedDuration, time.Second)
	assert.Contains(t, report.RequiredPermissions, "write:dest-volume")
	assert.Contains(t, report.RequiredPermissions, "delete:source-volume")
}

func TestBuildSimReportCollectsUnresolvedConflicts(t *testing.T) {
	mp := &plan.MovePlan{
		Nodes: map[core.NodeID]*plan.PlanNode{
			1: {ID: 1, Kind: plan.KindSkip, PathBefore: "a", PathAfter: "b",
				Conflicts: []plan.Conflict{{Kind: plan.ConflictNameExists, ExistingPath: "b"}}},
		},
	}

	report := BuildSimReport(mp)
	assert.Len(t, report.UnresolvedConflicts, 1)
}
