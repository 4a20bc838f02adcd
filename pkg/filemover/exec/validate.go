package exec

import (
	"filemover/pkg/filemover/fsx"
)

// JournalReport is validate-journal's result (SPEC_FULL.md Journal
// validation supplement; spec.md §6 names the operation without
// detailing it).
type JournalReport struct {
	Header       Header
	EntryCount   int
	OkCount      int
	SkipCount    int
	FailedCount  int
	Interrupted  bool // true when the file's tail is an unresolved Pending entry
	AmbiguousTail *Entry
}

// ValidateJournal reads a journal, checks its header, and flags a
// Pending-tailed file as interrupted — the filesystem state determines
// whether that tail should be treated as Ok or Failed (spec §5 Disk
// durability).
func ValidateJournal(path string, fsys fsx.FileSystem) (*JournalReport, error) {
	header, entries, err := ReadJournal(path)
	if err != nil {
		return nil, err
	}

	report := &JournalReport{Header: header, EntryCount: len(entries)}
	for i, e := range entries {
		switch e.Result {
		case ResultOk:
			report.OkCount++
		case ResultSkip:
			report.SkipCount++
		case ResultFailed:
			report.FailedCount++
		case ResultPending:
			if i == len(entries)-1 {
				report.Interrupted = true
				tail := e
				report.AmbiguousTail = &tail
			}
		}
	}

	if report.AmbiguousTail != nil && fsys != nil {
		resolveAmbiguousTail(report, fsys)
	}

	return report, nil
}

// resolveAmbiguousTail cross-checks a Pending tail against current
// filesystem state: if the destination exists and the source doesn't,
// the operation almost certainly completed and the interrupted run only
// failed to write the commit line.
func resolveAmbiguousTail(report *JournalReport, fsys fsx.FileSystem) {
	e := report.AmbiguousTail
	_, destErr := fsys.Stat(e.Dest)
	_, srcErr := fsys.Stat(e.Source)
	if destErr == nil && srcErr != nil {
		report.OkCount++
		report.Interrupted = false
		report.AmbiguousTail = nil
	}
}
