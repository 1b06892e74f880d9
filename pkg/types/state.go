// Per-activity tracked state. This is the mutable overlay on the immutable
// activity tree; one ActivityState exists per visited activity.
package types

import "time"

// ActivityState holds the tracked state of one activity within a session.
// The zero value is the state of a never-visited activity.
type ActivityState struct {
	// Active reports an attempt is in progress on this activity.
	Active bool `json:"active"`

	// Suspended reports the activity was left via SuspendAll and may be
	// resumed.
	Suspended bool `json:"suspended"`

	// Attempted reports at least one attempt was started.
	Attempted bool `json:"attempted"`

	// AttemptCount is the number of attempts started.
	AttemptCount int `json:"attempt_count"`

	// Completed is the completion status; meaningful only when
	// ProgressDetermined is true.
	Completed bool `json:"completed"`

	// ProgressDetermined reports whether completion has been established,
	// either by direct tracking (leaves) or rollup (clusters).
	ProgressDetermined bool `json:"progress_determined"`

	// ObjectiveSatisfied is the primary objective's satisfaction; meaningful
	// only when ObjectiveStatusKnown is true.
	ObjectiveSatisfied bool `json:"objective_satisfied"`

	// ObjectiveStatusKnown reports whether satisfaction has been established.
	ObjectiveStatusKnown bool `json:"objective_status_known"`

	// ObjectiveMeasureKnown reports whether a normalized measure is recorded.
	ObjectiveMeasureKnown bool `json:"objective_measure_known"`

	// ObjectiveNormalizedMeasure is the score scaled to [-1, 1]; meaningful
	// only when ObjectiveMeasureKnown is true.
	ObjectiveNormalizedMeasure float64 `json:"objective_normalized_measure"`

	// AttemptDuration is the accumulated duration of the current attempt.
	AttemptDuration time.Duration `json:"attempt_duration"`

	// TotalDuration is the accumulated duration across all attempts.
	TotalDuration time.Duration `json:"total_duration"`

	// SuspendData is an opaque blob owned by the content; the engine passes
	// it through untouched.
	SuspendData string `json:"suspend_data,omitempty"`
}

// Clone returns a copy of the state.
func (s *ActivityState) Clone() *ActivityState {
	c := *s
	return &c
}
