package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// sampleCourse is a small two-leaf course used across store tests.
func sampleCourse(courseID string) *types.Course {
	return &types.Course{
		CourseID: courseID,
		Title:    "Sample Course",
		RootID:   "root",
		Nodes: []*types.ActivityNode{
			{
				ActivityID:    "root",
				Title:         "Root",
				ChildIDs:      []string{"a", "b"},
				Visible:       true,
				ControlMode:   types.ControlMode{Choice: true, Flow: true},
				MeasureWeight: 1,
			},
			{
				ActivityID:    "a",
				Title:         "Lesson A",
				ParentID:      "root",
				Leaf:          true,
				Visible:       true,
				LaunchHref:    "content/a.html",
				MeasureWeight: 1,
			},
			{
				ActivityID:    "b",
				Title:         "Lesson B",
				ParentID:      "root",
				Leaf:          true,
				Visible:       true,
				LaunchHref:    "content/b.html",
				MeasureWeight: 1,
				PreconditionRules: []types.SequencingRule{{
					Conditions: []types.RuleCondition{{Condition: types.ConditionAttemptLimitExceeded}},
					Action:     types.ActionDisabled,
				}},
			},
		},
	}
}

func TestCourseRoundTrip(t *testing.T) {
	store := attachedStore(t)
	course := sampleCourse("course-1")

	require.NoError(t, store.SaveCourse(course))

	loaded, err := store.GetCourse("course-1")
	require.NoError(t, err)

	assert.Equal(t, course.CourseID, loaded.CourseID)
	assert.Equal(t, course.Title, loaded.Title)
	assert.Equal(t, course.RootID, loaded.RootID)
	require.Len(t, loaded.Nodes, 3)
	assert.Equal(t, []string{"a", "b"}, loaded.Node("root").ChildIDs)
	assert.Equal(t, "content/a.html", loaded.Node("a").LaunchHref)

	// Rules survive the document round trip.
	b := loaded.Node("b")
	require.Len(t, b.PreconditionRules, 1)
	assert.Equal(t, types.ActionDisabled, b.PreconditionRules[0].Action)
	assert.Equal(t, types.ConditionAttemptLimitExceeded, b.PreconditionRules[0].Conditions[0].Condition)
}

func TestCourseReplace(t *testing.T) {
	store := attachedStore(t)
	require.NoError(t, store.SaveCourse(sampleCourse("course-1")))

	updated := sampleCourse("course-1")
	updated.Title = "Renamed Course"
	require.NoError(t, store.SaveCourse(updated))

	loaded, err := store.GetCourse("course-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Course", loaded.Title)

	courses, err := store.ListCourses()
	require.NoError(t, err)
	assert.Len(t, courses, 1, "replace must not create a second row")
}

func TestCourseNotFound(t *testing.T) {
	store := attachedStore(t)

	_, err := store.GetCourse("no-such-course")
	assert.ErrorIs(t, err, types.ErrCourseNotFound)
}

func TestCourseInvalid(t *testing.T) {
	store := attachedStore(t)

	assert.ErrorIs(t, store.SaveCourse(nil), types.ErrInvalidID)
	assert.ErrorIs(t, store.SaveCourse(&types.Course{}), types.ErrInvalidID)
}

func TestListCoursesOrdered(t *testing.T) {
	store := attachedStore(t)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.SaveCourse(sampleCourse(id)))
	}

	courses, err := store.ListCourses()
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, "alpha", courses[0].CourseID)
	assert.Equal(t, "mid", courses[1].CourseID)
	assert.Equal(t, "zeta", courses[2].CourseID)
}
