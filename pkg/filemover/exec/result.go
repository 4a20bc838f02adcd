package exec

import (
	"time"

	"filemover/pkg/filemover/core"
)

// Status is the overall outcome of an execution run (spec §7
// Propagation: "Ok iff every non-Skip node is Ok, otherwise Partial").
type Status string

const (
	StatusOk        Status = "Ok"
	StatusPartial   Status = "Partial"
	StatusCancelled Status = "Cancelled"
	StatusFatal     Status = "Fatal"
)

// NodeResult records one node's outcome.
type NodeResult struct {
	NodeID   core.NodeID
	Result   Result
	Message  string
	Duration time.Duration
	Attempts int
}

// ExecResult summarizes a full Executor.Run (spec §4.5 Contract).
type ExecResult struct {
	Status      Status
	JournalPath string
	Nodes       []NodeResult
	Duration    time.Duration
	CompletedOps int
	FailedOps    int
	SkippedOps   int
}
