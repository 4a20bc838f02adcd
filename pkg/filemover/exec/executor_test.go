package exec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/plan"
)

func TestExecutorRunMovesAndJournalsOk(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	require.NoError(t, mem.MkdirAll("src/report_q1", 0o755))
	require.NoError(t, mem.WriteFile("src/report_q1/notes.txt", []byte("hi"), 0o644))

	node := &plan.PlanNode{ID: 1, PathBefore: "src/report_q1", PathAfter: "archive/report_q1", Kind: plan.KindMove}
	mp := &plan.MovePlan{RootIDs: []core.NodeID{1}, Nodes: map[core.NodeID]*plan.PlanNode{1: node}}

	ex := New(mem, core.DefaultLogger())
	journalPath := filepath.Join(t.TempDir(), "run.jsonl")
	result, err := ex.Run(context.Background(), mp, Options{JournalPath: journalPath, ParallelThreads: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusOk, result.Status)
	assert.Equal(t, 1, result.CompletedOps)
	_, err = mem.Stat("archive/report_q1/notes.txt")
	assert.NoError(t, err)
	_, err = mem.Stat("src/report_q1")
	assert.Error(t, err)

	_, entries, err := ReadJournal(journalPath)
	require.NoError(t, err)
	var sawOk bool
	for _, e := range entries {
		if e.Result == ResultOk {
			sawOk = true
		}
	}
	assert.True(t, sawOk)
}

func TestExecutorRunJournalsSkipNodesWithoutMutating(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	require.NoError(t, mem.MkdirAll("src/report_q1", 0o755))
	require.NoError(t, mem.MkdirAll("archive/report_q1", 0o755))

	node := &plan.PlanNode{ID: 1, PathBefore: "src/report_q1", PathAfter: "archive/report_q1", Kind: plan.KindSkip}
	mp := &plan.MovePlan{RootIDs: []core.NodeID{1}, Nodes: map[core.NodeID]*plan.PlanNode{1: node}}

	ex := New(mem, core.DefaultLogger())
	journalPath := filepath.Join(t.TempDir(), "run.jsonl")
	result, err := ex.Run(context.Background(), mp, Options{JournalPath: journalPath})
	require.NoError(t, err)

	assert.Equal(t, StatusOk, result.Status)
	assert.Equal(t, 1, result.SkippedOps)
	_, err = mem.Stat("src/report_q1")
	assert.NoError(t, err, "Skip nodes must not be mutated")
}

func TestExecuteNodeNeverMutatesWhenAttemptRecordFailsToWrite(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	require.NoError(t, mem.MkdirAll("src/report_q1", 0o755))

	journalPath := filepath.Join(t.TempDir(), "run.jsonl")
	j, err := CreateJournal(journalPath)
	require.NoError(t, err)
	require.NoError(t, j.Close()) // further Append calls now fail

	node := &plan.PlanNode{ID: 1, PathBefore: "src/report_q1", PathAfter: "archive/report_q1", Kind: plan.KindMove}
	ex := New(mem, core.DefaultLogger())

	nr, err := ex.executeNode(context.Background(), j, node)
	assert.Error(t, err)
	assert.Equal(t, ResultFailed, nr.Result)

	_, statErr := mem.Stat("src/report_q1")
	assert.NoError(t, statErr, "the node must not be performed when its attempt record can't be journaled")
	_, statErr = mem.Stat("archive/report_q1")
	assert.Error(t, statErr)
}

func TestExecutorRunReportsPartialOnFailure(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	// No such source exists; Rename will fail.
	node := &plan.PlanNode{ID: 1, PathBefore: "src/missing", PathAfter: "archive/missing", Kind: plan.KindMove}
	mp := &plan.MovePlan{RootIDs: []core.NodeID{1}, Nodes: map[core.NodeID]*plan.PlanNode{1: node}}

	ex := New(mem, core.DefaultLogger())
	journalPath := filepath.Join(t.TempDir(), "run.jsonl")
	result, err := ex.Run(context.Background(), mp, Options{JournalPath: journalPath})
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, result.Status)
	assert.Equal(t, 1, result.FailedOps)
}
