// Shared fixtures for the sequencing tests: small activity trees built from
// node constructors.
package sequencing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// flowControl is the permissive control mode used by most fixtures.
var flowControl = types.ControlMode{Choice: true, ChoiceExit: true, Flow: true}

// leaf constructs a leaf activity node.
func leaf(id, parentID string) *types.ActivityNode {
	return &types.ActivityNode{
		ActivityID:    id,
		Title:         id,
		ParentID:      parentID,
		Leaf:          true,
		Visible:       true,
		LaunchHref:    "content/" + id + ".html",
		MeasureWeight: 1,
	}
}

// cluster constructs a non-leaf activity node with the given children.
func cluster(id, parentID string, control types.ControlMode, childIDs ...string) *types.ActivityNode {
	return &types.ActivityNode{
		ActivityID:    id,
		Title:         id,
		ParentID:      parentID,
		ChildIDs:      childIDs,
		Visible:       true,
		ControlMode:   control,
		MeasureWeight: 1,
	}
}

// newCourse wraps nodes into a course rooted at the first node.
func newCourse(courseID string, nodes ...*types.ActivityNode) *types.Course {
	return &types.Course{
		CourseID:  courseID,
		Title:     courseID,
		RootID:    nodes[0].ActivityID,
		Nodes:     nodes,
		CreatedAt: time.Now().UTC(),
	}
}

// mustTree builds a validated tree or fails the test.
func mustTree(t *testing.T, course *types.Course) *ActivityTree {
	t.Helper()
	tree, err := NewTree(course)
	require.NoError(t, err)
	return tree
}

// linearTree is a root cluster with leaves a, b, c in flow order.
func linearTree(t *testing.T) *ActivityTree {
	t.Helper()
	return mustTree(t, newCourse("course-linear",
		cluster("root", "", flowControl, "a", "b", "c"),
		leaf("a", "root"),
		leaf("b", "root"),
		leaf("c", "root"),
	))
}

// newActiveSession runs a Start request and returns the processor's session
// positioned on the first leaf.
func newActiveSession(t *testing.T, p *Processor) *types.SequencingSession {
	t.Helper()
	session := types.NewSession("learner-1", p.Tree().CourseID())
	next, resp, err := p.Process(session, types.NavigationRequest{Type: types.RequestStart})
	require.NoError(t, err)
	require.True(t, resp.Success)
	return next
}

// measurePtr returns a pointer to a float64 literal.
func measurePtr(v float64) *float64 { return &v }
