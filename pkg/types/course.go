// Course entity: the immutable activity tree as delivered by content
// ingestion, persisted once per course and shared by all sessions.
package types

import (
	"errors"
	"time"
)

// Course holds the structural definition of one course: a flat arena of
// activity nodes plus the root id. Parent/child relations are id lookups,
// never owning references.
type Course struct {
	// CourseID is the stable course identifier.
	CourseID string `json:"course_id"`

	// Title is the human-readable course name.
	Title string `json:"title"`

	// RootID is the id of the single root activity.
	RootID string `json:"root_id"`

	// Nodes lists every activity in the course. Order is not significant;
	// sibling order lives in each node's ChildIDs.
	Nodes []*ActivityNode `json:"nodes"`

	CreatedAt time.Time `json:"created_at"`
}

// Course validation errors. These indicate malformed trees and are fatal
// integrity violations, not sequencing exceptions.
var (
	ErrNoRoot           = errors.New("course has no root activity")
	ErrMultipleRoots    = errors.New("course has more than one root activity")
	ErrDuplicateNode    = errors.New("duplicate activity id")
	ErrDanglingChild    = errors.New("child reference to unknown activity")
	ErrParentMismatch   = errors.New("parent back-reference does not match tree structure")
	ErrTreeCycle        = errors.New("cycle in activity tree")
	ErrLeafWithChildren = errors.New("leaf activity has children")
	ErrUnknownActivity  = errors.New("unknown activity id")
)

// Node returns the node with the given id, or nil if absent.
func (c *Course) Node(id string) *ActivityNode {
	for _, n := range c.Nodes {
		if n.ActivityID == id {
			return n
		}
	}
	return nil
}
