package exec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filemover/pkg/filemover/plan"
)

func TestJournalWritesHeaderAndEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	j, err := CreateJournal(path)
	require.NoError(t, err)
	require.NotEmpty(t, j.SessionID)

	require.NoError(t, j.Append(Entry{Source: "a", Dest: "b", Op: plan.KindMove, Result: ResultPending}))
	require.NoError(t, j.Append(Entry{Source: "a", Dest: "b", Op: plan.KindMove, Result: ResultOk}))
	require.NoError(t, j.Close())

	header, entries, err := ReadJournal(path)
	require.NoError(t, err)
	assert.Equal(t, journalVersion, header.Version)
	assert.Equal(t, j.SessionID, header.SessionID)
	require.Len(t, entries, 2)
	assert.Equal(t, ResultPending, entries[0].Result)
	assert.Equal(t, ResultOk, entries[1].Result)
}
