package exec

import (
	"time"

	"filemover/pkg/filemover/plan"
)

// Per-operation cost model for SimReport: a fixed overhead per op (stat,
// journal write, directory creation) plus a size-proportional term for
// CopyDelete, which must read and rewrite every byte instead of a single
// rename syscall.
const (
	fixedOpCost          = 15 * time.Millisecond
	copyDeleteBytesPerSec = 80 * 1024 * 1024 // conservative same-box copy throughput estimate
)

// SimReport is dry-run's output: an estimate of what applying the plan
// would do, computed without touching the filesystem (SPEC_FULL.md
// SimReport supplement; spec.md §6 names dry-run as emitting one without
// defining its shape).
type SimReport struct {
	EstimatedDuration    time.Duration
	RequiredPermissions  []string
	UnresolvedConflicts  []plan.Conflict
	PlanSummary          plan.Summary
}

// BuildSimReport walks mp and estimates cost per node; it performs no
// I/O, so it is safe to call on a plan built against a filesystem the
// caller no longer holds open.
func BuildSimReport(mp *plan.MovePlan) *SimReport {
	report := &SimReport{PlanSummary: mp.Summary}

	permSet := map[string]bool{}
	var total time.Duration

	for _, n := range mp.Nodes {
		if n.Kind == plan.KindNone {
			continue
		}
		if n.Kind != plan.KindSkip {
			total += fixedOpCost
		}
		if n.Kind == plan.KindCopyDelete && n.Size != nil && *n.Size > 0 {
			total += time.Duration(float64(*n.Size) / copyDeleteBytesPerSec * float64(time.Second))
			permSet["write:dest-volume"] = true
			permSet["delete:source-volume"] = true
		}
		if n.Kind == plan.KindMove || n.Kind == plan.KindRename {
			permSet["write:dest-volume"] = true
		}
		report.UnresolvedConflicts = append(report.UnresolvedConflicts, n.Conflicts...)
	}

	for p := range permSet {
		report.RequiredPermissions = append(report.RequiredPermissions, p)
	}
	report.EstimatedDuration = total
	return report
}
