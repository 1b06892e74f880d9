// SessionStore interface and store error taxonomy.
package types

import (
	"errors"
	"time"
)

// SessionStore defines backend-agnostic persistence for courses, sessions,
// and the navigation log. Callers attach to a backend, operate, and detach
// when done. The engine treats the store as a transactional key-value slot
// keyed by (learner, course).
type SessionStore interface {
	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// SaveCourse creates or replaces a course definition.
	SaveCourse(course *Course) error

	// GetCourse returns the course with the given id.
	// Returns ErrCourseNotFound if no course exists with that id.
	GetCourse(courseID string) (*Course, error)

	// ListCourses returns all stored courses ordered by id.
	ListCourses() ([]*Course, error)

	// LoadSession returns the session for the given learner and course.
	// Returns ErrSessionNotFound if none exists.
	LoadSession(learnerID, courseID string) (*SequencingSession, error)

	// SaveSession persists the session. A new session is inserted; an
	// existing one is updated only when the stored version matches
	// session.Version, in which case the version is incremented. A stale
	// version returns ErrVersionConflict; the caller must retry from a
	// fresh load, never merge.
	SaveSession(session *SequencingSession) error

	// DeleteSession removes the session for the given learner and course.
	// Returns ErrSessionNotFound if none exists.
	DeleteSession(learnerID, courseID string) error

	// AppendLog records one processed navigation request.
	AppendLog(entry *NavigationLogEntry) error

	// ListLog returns the navigation log for a session, oldest first.
	ListLog(learnerID, courseID string) ([]*NavigationLogEntry, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Store operation errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrVersionConflict = errors.New("session version conflict")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidData     = errors.New("invalid entity data")
)

// Request validation errors.
var (
	ErrUnknownRequestType  = errors.New("unknown navigation request type")
	ErrChoiceTargetMissing = errors.New("choice request requires a target activity")
)

// NavigationLogEntry is one record of the append-only navigation audit log.
type NavigationLogEntry struct {
	// EntryID is a UUID v7, generated on append.
	EntryID string `json:"entry_id"`

	LearnerID string `json:"learner_id"`
	CourseID  string `json:"course_id"`

	// RequestType and TargetID echo the processed request.
	RequestType string `json:"request_type"`
	TargetID    string `json:"target_id,omitempty"`

	// Success and Exception echo the response.
	Success   bool   `json:"success"`
	Exception string `json:"exception,omitempty"`

	// CurrentActivityID is the cursor after processing.
	CurrentActivityID string `json:"current_activity_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
