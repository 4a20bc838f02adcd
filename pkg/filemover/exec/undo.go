package exec

import (
	"context"
	"fmt"

	"filemover/pkg/filemover/fsx"
	"filemover/pkg/filemover/plan"
)

// UndoFailureKind tags why a single entry could not be reversed
// (spec §7 Undo error kinds).
type UndoFailureKind string

const (
	UndoMissingDestination UndoFailureKind = "MissingDestination"
	UndoInverseUnsupported UndoFailureKind = "InverseUnsupported"
)

// FailedRestore records one entry Undo could not reverse (spec §4.5
// Undo: "reported as FailedRestore; undo does not stop on first
// failure").
type FailedRestore struct {
	Entry Entry
	Kind  UndoFailureKind
	Err   error
}

func (f FailedRestore) Error() string {
	return fmt.Sprintf("%s: %s -> %s: %v", f.Kind, f.Entry.Source, f.Entry.Dest, f.Err)
}

// UndoResult summarizes an Undo run.
type UndoResult struct {
	Restored int
	Failed   []FailedRestore
}

// Undo reads a journal and, for each result=Ok entry in reverse
// chronological order, applies the inverse operation (spec §4.5 Undo).
// It is all-or-attempt: every reversible entry is attempted once, and a
// failure on one entry never stops the rest.
func Undo(ctx context.Context, journalPath string, fsys fsx.FileSystem) (*UndoResult, error) {
	_, entries, err := ReadJournal(journalPath)
	if err != nil {
		return nil, err
	}

	result := &UndoResult{}
	for i := len(entries) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e := entries[i]
		if e.Result != ResultOk {
			continue
		}
		if fr := undoOne(fsys, e); fr != nil {
			result.Failed = append(result.Failed, *fr)
			continue
		}
		result.Restored++
	}
	return result, nil
}

func undoOne(fsys fsx.FileSystem, e Entry) *FailedRestore {
	switch e.Op {
	case plan.KindRename, plan.KindMove:
		if _, err := fsys.Stat(e.Dest); err != nil {
			return &FailedRestore{Entry: e, Kind: UndoMissingDestination, Err: err}
		}
		if err := fsys.Rename(e.Dest, e.Source); err != nil {
			return &FailedRestore{Entry: e, Kind: UndoInverseUnsupported, Err: err}
		}
		return nil
	case plan.KindCopyDelete:
		if _, err := fsys.Stat(e.Dest); err != nil {
			return &FailedRestore{Entry: e, Kind: UndoMissingDestination, Err: err}
		}
		if err := copyTree(fsys, e.Dest, e.Source); err != nil {
			return &FailedRestore{Entry: e, Kind: UndoInverseUnsupported, Err: err}
		}
		if err := fsys.RemoveAll(e.Dest); err != nil {
			return &FailedRestore{Entry: e, Kind: UndoInverseUnsupported, Err: err}
		}
		return nil
	default:
		return &FailedRestore{Entry: e, Kind: UndoInverseUnsupported, Err: fmt.Errorf("no inverse for op %q", e.Op)}
	}
}
