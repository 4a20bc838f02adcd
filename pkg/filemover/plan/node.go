// Package plan builds the Before/After forest for a selected set of
// scan hits, materializing conflicts and warnings up front (spec §4.4).
package plan

import (
	"filemover/pkg/filemover/core"
	"filemover/pkg/filemover/scan"
)

// Kind is the operation a PlanNode will perform at execution time.
type Kind string

const (
	KindMove       Kind = "Move"
	KindCopyDelete Kind = "CopyDelete"
	KindRename     Kind = "Rename"
	KindSkip       Kind = "Skip"
	KindNone       Kind = "None"
)

// ConflictKind tags a Conflict's variant (spec §3).
type ConflictKind string

const (
	ConflictNameExists      ConflictKind = "NameExists"
	ConflictCycleDetected   ConflictKind = "CycleDetected"
	ConflictDestInsideSource ConflictKind = "DestInsideSource"
	ConflictNoSpace         ConflictKind = "NoSpace"
	ConflictPermission      ConflictKind = "Permission"
)

// Conflict is a tagged variant; only the fields relevant to Kind are set.
type Conflict struct {
	Kind ConflictKind

	ExistingPath string // NameExists

	Required  uint64 // NoSpace
	Available uint64 // NoSpace

	RequiredPermission string // Permission
}

// PlanNode is one node of the Before/After forest (spec §3).
type PlanNode struct {
	ID          core.NodeID
	IsDir       bool
	NameBefore  string
	PathBefore  string
	NameAfter   string
	PathAfter   string
	Kind        Kind
	Size        *int64
	Warnings    []scan.Warning
	Conflicts   []Conflict
	Children    []core.NodeID
	RuleID      string

	// Dangerous marks a node whose Overwrite policy will clobber an
	// existing destination; the executor still runs it, but the UI must
	// get explicit acknowledgement first (spec §4.4 Conflict detection).
	Dangerous bool

	// childrenMaterialized tracks whether Children has been populated by
	// a deep-preview walk (spec §4.4 Tree construction: lazy).
	childrenMaterialized bool
}

func (n *PlanNode) hasConflictKind(k ConflictKind) bool {
	for _, c := range n.Conflicts {
		if c.Kind == k {
			return true
		}
	}
	return false
}
