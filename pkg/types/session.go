// Sequencing session aggregate and lifecycle transitions.
package types

import (
	"errors"
	"time"
)

// Session lifecycle states. A session progresses through these states as
// navigation requests are processed.
const (
	LifecycleNotStarted = "notStarted"
	LifecycleActive     = "active"
	LifecycleSuspended  = "suspended"
	LifecycleTerminated = "terminated"
)

// validLifecycles is the set of recognized lifecycle values.
var validLifecycles = map[string]bool{
	LifecycleNotStarted: true,
	LifecycleActive:     true,
	LifecycleSuspended:  true,
	LifecycleTerminated: true,
}

// SessionSchemaVersion is the persisted session document schema version.
const SessionSchemaVersion = 1

// Session lifecycle errors.
var (
	ErrInvalidLifecycle  = errors.New("invalid lifecycle value")
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// GlobalState is the session-wide navigation cursor.
type GlobalState struct {
	// CurrentActivityID is the activity the learner is on; empty before
	// Start and after ExitAll.
	CurrentActivityID string `json:"current_activity_id"`

	// SuspendedActivityID is recorded by SuspendAll and consumed by Resume.
	SuspendedActivityID string `json:"suspended_activity_id"`

	// AvailableChildren lists the sibling activity ids currently offered for
	// choice navigation.
	AvailableChildren []string `json:"available_children"`

	// LearnerPreferences is an opaque preference map passed through to the
	// runtime player.
	LearnerPreferences map[string]string `json:"learner_preferences,omitempty"`
}

// SequencingSession is the aggregate root for one learner's progress through
// one course. It is created on first launch, mutated exclusively by the
// navigation processor, and destroyed only by explicit deletion.
type SequencingSession struct {
	// SessionID is a UUID v7, generated on creation.
	SessionID string `json:"session_id"`

	// LearnerID and CourseID key the session in the store.
	LearnerID string `json:"learner_id"`
	CourseID  string `json:"course_id"`

	// Lifecycle is one of the Lifecycle constants.
	Lifecycle string `json:"lifecycle"`

	// Activities maps activity id to tracked state. Absent entries mean the
	// activity was never visited.
	Activities map[string]*ActivityState `json:"activities"`

	// Global is the session-wide cursor.
	Global GlobalState `json:"global"`

	// Version is the optimistic-concurrency version; incremented by the
	// store on every save.
	Version int64 `json:"version"`

	// SchemaVersion is the persisted document schema version.
	SchemaVersion int `json:"schema_version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a not-started session for the given learner and course.
// The caller assigns SessionID before persisting.
func NewSession(learnerID, courseID string) *SequencingSession {
	now := time.Now().UTC()
	return &SequencingSession{
		LearnerID:     learnerID,
		CourseID:      courseID,
		Lifecycle:     LifecycleNotStarted,
		Activities:    make(map[string]*ActivityState),
		SchemaVersion: SessionSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// State returns the tracked state for an activity, creating a zero-value
// entry on first access.
func (s *SequencingSession) State(activityID string) *ActivityState {
	if s.Activities == nil {
		s.Activities = make(map[string]*ActivityState)
	}
	st, ok := s.Activities[activityID]
	if !ok {
		st = &ActivityState{}
		s.Activities[activityID] = st
	}
	return st
}

// StateOf returns a copy of the tracked state for an activity without
// creating an entry. A never-visited activity yields the zero state. Rule
// evaluation uses this accessor so that reading state never mutates the
// session.
func (s *SequencingSession) StateOf(activityID string) ActivityState {
	if st, ok := s.Activities[activityID]; ok {
		return *st
	}
	return ActivityState{}
}

// Begin moves the session from notStarted to active.
// Returns ErrInvalidTransition from any other state.
func (s *SequencingSession) Begin() error {
	if s.Lifecycle != LifecycleNotStarted {
		return ErrInvalidTransition
	}
	s.Lifecycle = LifecycleActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Suspend moves the session from active to suspended.
// Returns ErrInvalidTransition from any other state.
func (s *SequencingSession) Suspend() error {
	if s.Lifecycle != LifecycleActive {
		return ErrInvalidTransition
	}
	s.Lifecycle = LifecycleSuspended
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Reactivate moves the session from suspended back to active.
// Returns ErrInvalidTransition from any other state.
func (s *SequencingSession) Reactivate() error {
	if s.Lifecycle != LifecycleSuspended {
		return ErrInvalidTransition
	}
	s.Lifecycle = LifecycleActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Terminate moves the session to terminated. Terminated is a terminal state;
// terminating an already-terminated session returns ErrInvalidTransition.
func (s *SequencingSession) Terminate() error {
	if s.Lifecycle == LifecycleTerminated {
		return ErrInvalidTransition
	}
	s.Lifecycle = LifecycleTerminated
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy of the session. The navigation processor
// mutates a clone and commits it only when the whole request succeeds.
func (s *SequencingSession) Clone() *SequencingSession {
	c := *s
	c.Activities = make(map[string]*ActivityState, len(s.Activities))
	for id, st := range s.Activities {
		c.Activities[id] = st.Clone()
	}
	if s.Global.AvailableChildren != nil {
		c.Global.AvailableChildren = append([]string(nil), s.Global.AvailableChildren...)
	}
	if s.Global.LearnerPreferences != nil {
		c.Global.LearnerPreferences = make(map[string]string, len(s.Global.LearnerPreferences))
		for k, v := range s.Global.LearnerPreferences {
			c.Global.LearnerPreferences[k] = v
		}
	}
	return &c
}

// Validate checks that the session document is well-formed.
func (s *SequencingSession) Validate() error {
	if s.LearnerID == "" || s.CourseID == "" {
		return ErrInvalidID
	}
	if !validLifecycles[s.Lifecycle] {
		return ErrInvalidLifecycle
	}
	return nil
}
