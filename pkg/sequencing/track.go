// Progress tracking input from the runtime player. Leaf completion and
// score never come from rollup; they enter here and propagate upward.
package sequencing

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// ProgressReport carries the runtime player's tracked outcome for one leaf
// attempt.
type ProgressReport struct {
	// ActivityID names the leaf the report applies to.
	ActivityID string

	// Completed is the directly-tracked completion status.
	Completed bool

	// Measure is the normalized score in [-1, 1]; nil when the content
	// reported no score.
	Measure *float64

	// Duration is the elapsed time to add to the attempt.
	Duration time.Duration

	// SuspendData replaces the stored opaque blob when non-empty.
	SuspendData string
}

// RecordProgress applies a runtime progress report to a leaf and rolls the
// change up to the root. Like Process, it works on a deep copy and returns
// the updated session; the input session is never mutated.
//
// Reporting against a cluster or an unknown activity is an integrity error.
func (p *Processor) RecordProgress(session *types.SequencingSession, report ProgressReport) (*types.SequencingSession, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	if session.CourseID != p.tree.CourseID() {
		return nil, fmt.Errorf("%w: session %s, tree %s", ErrCourseMismatch, session.CourseID, p.tree.CourseID())
	}
	node, err := p.tree.Node(report.ActivityID)
	if err != nil {
		return nil, err
	}
	if !node.Leaf {
		return nil, fmt.Errorf("%w: %s", ErrNotLeaf, report.ActivityID)
	}

	next := session.Clone()
	state := next.State(report.ActivityID)
	state.Attempted = true
	state.Completed = report.Completed
	state.ProgressDetermined = true
	if report.Duration > 0 {
		state.AttemptDuration += report.Duration
		state.TotalDuration += report.Duration
	}
	if report.SuspendData != "" {
		state.SuspendData = report.SuspendData
	}
	if report.Measure != nil {
		m := *report.Measure
		if m > 1 {
			m = 1
		}
		if m < -1 {
			m = -1
		}
		state.ObjectiveMeasureKnown = true
		state.ObjectiveNormalizedMeasure = m
	}

	// Satisfaction: measure-driven when the primary objective says so,
	// otherwise completion stands in for it.
	if obj := node.PrimaryObjective(); obj != nil && obj.SatisfiedByMeasure {
		if state.ObjectiveMeasureKnown {
			state.ObjectiveStatusKnown = true
			state.ObjectiveSatisfied = state.ObjectiveNormalizedMeasure >= obj.MinNormalizedMeasure
		}
	} else {
		state.ObjectiveStatusKnown = true
		state.ObjectiveSatisfied = report.Completed
	}

	if err := Rollup(p.tree, next, report.ActivityID, true); err != nil {
		return nil, err
	}
	return next, nil
}
