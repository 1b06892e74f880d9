// Activity tree: immutable structure built once from a course definition,
// with read-only structural navigation. Nodes live in an arena keyed by
// activity id; parent and child relations are id lookups.
package sequencing

import (
	"fmt"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// ActivityTree is the structural backbone the engine queries. It is built
// from a validated course definition and never mutated afterwards.
type ActivityTree struct {
	courseID string
	rootID   string
	nodes    map[string]*types.ActivityNode

	// preOrder caches the pre-order walk; sibling order follows ChildIDs.
	preOrder []string
}

// NewTree builds an ActivityTree from a course definition. The course is
// validated first: exactly one root, parent back-references consistent with
// child lists, no cycles, no dangling references, and childless leaves.
// A malformed course returns an integrity error and no tree.
func NewTree(course *types.Course) (*ActivityTree, error) {
	if course == nil || len(course.Nodes) == 0 {
		return nil, types.ErrNoRoot
	}

	nodes := make(map[string]*types.ActivityNode, len(course.Nodes))
	for _, n := range course.Nodes {
		if n.ActivityID == "" {
			return nil, types.ErrInvalidID
		}
		if _, dup := nodes[n.ActivityID]; dup {
			return nil, fmt.Errorf("%w: %s", types.ErrDuplicateNode, n.ActivityID)
		}
		nodes[n.ActivityID] = n
	}

	t := &ActivityTree{
		courseID: course.CourseID,
		rootID:   course.RootID,
		nodes:    nodes,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}

	t.preOrder = make([]string, 0, len(nodes))
	t.collectPreOrder(t.rootID)
	return t, nil
}

// validate checks the structural invariants of the tree.
func (t *ActivityTree) validate() error {
	root, ok := t.nodes[t.rootID]
	if !ok || root.ParentID != "" {
		return types.ErrNoRoot
	}

	for id, n := range t.nodes {
		if n.ParentID == "" && id != t.rootID {
			return fmt.Errorf("%w: %s", types.ErrMultipleRoots, id)
		}
		if n.ParentID != "" {
			parent, ok := t.nodes[n.ParentID]
			if !ok {
				return fmt.Errorf("%w: %s -> %s", types.ErrDanglingChild, id, n.ParentID)
			}
			if !containsID(parent.ChildIDs, id) {
				return fmt.Errorf("%w: %s", types.ErrParentMismatch, id)
			}
		}
		if n.Leaf && len(n.ChildIDs) > 0 {
			return fmt.Errorf("%w: %s", types.ErrLeafWithChildren, id)
		}
		for _, childID := range n.ChildIDs {
			child, ok := t.nodes[childID]
			if !ok {
				return fmt.Errorf("%w: %s -> %s", types.ErrDanglingChild, id, childID)
			}
			if child.ParentID != id {
				return fmt.Errorf("%w: %s", types.ErrParentMismatch, childID)
			}
		}
	}

	// Every node must be reachable from the root by parent walking without
	// revisiting; an unreachable or revisited node indicates a cycle.
	for id := range t.nodes {
		seen := make(map[string]bool)
		cur := id
		for cur != "" {
			if seen[cur] {
				return fmt.Errorf("%w: %s", types.ErrTreeCycle, id)
			}
			seen[cur] = true
			cur = t.nodes[cur].ParentID
		}
		if !seen[t.rootID] {
			return fmt.Errorf("%w: %s", types.ErrTreeCycle, id)
		}
	}

	return nil
}

// collectPreOrder appends the subtree rooted at id to the pre-order cache.
func (t *ActivityTree) collectPreOrder(id string) {
	t.preOrder = append(t.preOrder, id)
	for _, childID := range t.nodes[id].ChildIDs {
		t.collectPreOrder(childID)
	}
}

// CourseID returns the id of the course the tree was built from.
func (t *ActivityTree) CourseID() string { return t.courseID }

// Root returns the root activity.
func (t *ActivityTree) Root() *types.ActivityNode { return t.nodes[t.rootID] }

// Node returns the activity with the given id.
// Returns ErrUnknownActivity if the id is not part of the tree.
func (t *ActivityTree) Node(id string) (*types.ActivityNode, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownActivity, id)
	}
	return n, nil
}

// Contains reports whether the id names an activity in the tree.
func (t *ActivityTree) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// ParentOf returns the parent of the given activity, or nil for the root.
func (t *ActivityTree) ParentOf(id string) *types.ActivityNode {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return nil
	}
	return t.nodes[n.ParentID]
}

// ChildrenOf returns the children of the given activity in sibling order.
func (t *ActivityTree) ChildrenOf(id string) []*types.ActivityNode {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	children := make([]*types.ActivityNode, 0, len(n.ChildIDs))
	for _, childID := range n.ChildIDs {
		children = append(children, t.nodes[childID])
	}
	return children
}

// NextSibling returns the sibling after the given activity, or nil when the
// activity is the last child or the root.
func (t *ActivityTree) NextSibling(id string) *types.ActivityNode {
	parent := t.ParentOf(id)
	if parent == nil {
		return nil
	}
	for i, childID := range parent.ChildIDs {
		if childID == id && i+1 < len(parent.ChildIDs) {
			return t.nodes[parent.ChildIDs[i+1]]
		}
	}
	return nil
}

// PreviousSibling returns the sibling before the given activity, or nil when
// the activity is the first child or the root.
func (t *ActivityTree) PreviousSibling(id string) *types.ActivityNode {
	parent := t.ParentOf(id)
	if parent == nil {
		return nil
	}
	for i, childID := range parent.ChildIDs {
		if childID == id && i > 0 {
			return t.nodes[parent.ChildIDs[i-1]]
		}
	}
	return nil
}

// IsDescendant reports whether id lies strictly below ancestorID.
func (t *ActivityTree) IsDescendant(ancestorID, id string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	cur := n.ParentID
	for cur != "" {
		if cur == ancestorID {
			return true
		}
		cur = t.nodes[cur].ParentID
	}
	return false
}

// PreOrder returns the activity ids in pre-order. The returned slice is
// shared; callers must not modify it.
func (t *ActivityTree) PreOrder() []string { return t.preOrder }

// AncestorsOf returns the chain of ancestors from the activity's parent up
// to and including the root.
func (t *ActivityTree) AncestorsOf(id string) []*types.ActivityNode {
	var chain []*types.ActivityNode
	for p := t.ParentOf(id); p != nil; p = t.ParentOf(p.ActivityID) {
		chain = append(chain, p)
	}
	return chain
}

// containsID reports whether ids contains id.
func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
