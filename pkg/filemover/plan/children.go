package plan

import (
	"path/filepath"

	"filemover/pkg/filemover/core"
)

// MaterializeChildren lazily walks node's source subtree and assigns
// stable child PlanNodes, storing child ids in insertion (enumeration)
// order (spec §4.4 Tree construction). Safe to call multiple times; a
// node already materialized is a no-op.
func (p *Planner) MaterializeChildren(mp *MovePlan, nodeID core.NodeID) error {
	node, ok := mp.Nodes[nodeID]
	if !ok {
		return nil
	}
	if node.childrenMaterialized {
		return nil
	}
	node.childrenMaterialized = true

	entries, err := p.fs.ReadDir(node.PathBefore)
	if err != nil {
		return nil // directory unreadable; leave childless, scanner already warned
	}

	for _, entry := range entries {
		childBefore := filepath.Join(node.PathBefore, entry.Name())
		childAfter := filepath.Join(node.PathAfter, entry.Name())

		info, err := entry.Info()
		var size *int64
		if err == nil && !entry.IsDir() {
			s := info.Size()
			size = &s
		}

		child := &PlanNode{
			ID:         mp.seq.Next(),
			IsDir:      entry.IsDir(),
			NameBefore: entry.Name(),
			PathBefore: childBefore,
			NameAfter:  entry.Name(),
			PathAfter:  childAfter,
			Kind:       node.Kind, // children inherit the parent's operation
			Size:       size,
			RuleID:     node.RuleID,
		}
		mp.Nodes[child.ID] = child
		node.Children = append(node.Children, child.ID)

		if entry.IsDir() {
			if err := p.MaterializeChildren(mp, child.ID); err != nil {
				return err
			}
		}
	}

	mp.recomputeSummary()
	return nil
}
