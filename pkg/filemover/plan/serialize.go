package plan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"filemover/pkg/filemover/core"
)

// planDocVersion is bumped whenever the on-disk shape of a MovePlan
// changes in a way that breaks older readers.
const planDocVersion = "1"

// PlanMetadata carries plan.json's header fields (spec §6 plan.json).
type PlanMetadata struct {
	Version   string `json:"version"`
	CreatedAt string `json:"created_at,omitempty"`
}

// planDoc is the on-disk shape of a MovePlan; the in-memory MovePlan
// keeps a live *core.IDSequence which has nothing to serialize.
type planDoc struct {
	Metadata PlanMetadata              `json:"metadata"`
	RootIDs  []core.NodeID             `json:"root_ids"`
	Nodes    map[core.NodeID]*PlanNode `json:"nodes"`
	Summary  Summary                   `json:"summary"`
}

// MarshalPlan serializes a MovePlan to indented JSON (spec §6 plan.json).
func MarshalPlan(mp *MovePlan, createdAt string) ([]byte, error) {
	doc := planDoc{
		Metadata: PlanMetadata{Version: planDocVersion, CreatedAt: createdAt},
		RootIDs:  mp.RootIDs,
		Nodes:    mp.Nodes,
		Summary:  mp.Summary,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalPlan deserializes a MovePlan written by MarshalPlan. The
// returned plan's id sequence resumes above the highest node id found,
// so subsequent MaterializeChildren/ApplyEdit calls never collide with
// ids loaded from disk.
func UnmarshalPlan(data []byte) (*MovePlan, error) {
	var raw struct {
		Metadata json.RawMessage           `json:"metadata"`
		RootIDs  []core.NodeID             `json:"root_ids"`
		Nodes    map[core.NodeID]*PlanNode `json:"nodes"`
		Summary  Summary                   `json:"summary"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode plan document: %w", err)
	}

	var meta PlanMetadata
	if err := json.Unmarshal(raw.Metadata, &meta); err != nil {
		return nil, fmt.Errorf("decode plan metadata: %w", err)
	}
	if meta.Version != planDocVersion {
		return nil, fmt.Errorf("unsupported plan document version %q (want %q)", meta.Version, planDocVersion)
	}

	var maxID core.NodeID
	for id, n := range raw.Nodes {
		if id > maxID {
			maxID = id
		}
		if len(n.Children) > 0 {
			n.childrenMaterialized = true
		}
	}

	mp := &MovePlan{
		RootIDs: raw.RootIDs,
		Nodes:   raw.Nodes,
		Summary: raw.Summary,
		seq:     core.NewIDSequenceFrom(uint64(maxID) + 1),
	}
	return mp, nil
}
