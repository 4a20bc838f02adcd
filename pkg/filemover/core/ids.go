package core

import "sync/atomic"

// NodeID is a plan-scoped, monotonically increasing identifier assigned
// to every PlanNode (spec §3: "64-bit monotonic per plan").
type NodeID uint64

// IDSequence generates NodeIDs for a single plan, adapted from the
// teacher's SequenceIDGenerator but scoped to one plan instance rather
// than a package-level counter, so two plans built concurrently don't
// share numbering.
type IDSequence struct {
	counter atomic.Uint64
}

// NewIDSequence returns a sequence starting at 1 (0 is reserved to mean
// "no id" in optional NodeID fields).
func NewIDSequence() *IDSequence { return &IDSequence{} }

// NewIDSequenceFrom returns a sequence whose first Next() call returns
// start, used when resuming a plan loaded from disk.
func NewIDSequenceFrom(start uint64) *IDSequence {
	s := &IDSequence{}
	if start > 0 {
		s.counter.Store(start - 1)
	}
	return s
}

// Next returns the next id in the sequence.
func (s *IDSequence) Next() NodeID {
	return NodeID(s.counter.Add(1))
}
