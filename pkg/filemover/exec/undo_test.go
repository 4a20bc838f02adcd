package exec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/plan"
)

func TestUndoReversesOkMoveEntries(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	require.NoError(t, mem.MkdirAll("archive/report_q1", 0o755))

	path := filepath.Join(t.TempDir(), "run.jsonl")
	j, err := CreateJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Entry{Source: "src/report_q1", Dest: "archive/report_q1", Op: plan.KindMove, Result: ResultPending}))
	require.NoError(t, j.Append(Entry{Source: "src/report_q1", Dest: "archive/report_q1", Op: plan.KindMove, Result: ResultOk}))
	require.NoError(t, j.Close())

	result, err := Undo(context.Background(), path, mem)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Empty(t, result.Failed)

	_, err = mem.Stat("src/report_q1")
	assert.NoError(t, err)
}

func TestUndoReportsMissingDestinationWithoutStopping(t *testing.T) {
	mem := fsx.NewMemFileSystem()
	require.NoError(t, mem.MkdirAll("archive/ok", 0o755))

	path := filepath.Join(t.TempDir(), "run.jsonl")
	j, err := CreateJournal(path)
	require.NoError(t, err)
	require.NoError(t, j.Append(Entry{Source: "src/gone", Dest: "archive/gone", Op: plan.KindMove, Result: ResultOk}))
	require.NoError(t, j.Append(Entry{Source: "src/ok", Dest: "archive/ok", Op: plan.KindMove, Result: ResultOk}))
	require.NoError(t, j.Close())

	result, err := Undo(context.Background(), path, mem)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, UndoMissingDestination, result.Failed[0].Kind)
}
