// Session persistence with optimistic concurrency. The whole session
// aggregate is stored as one JSON document keyed by (learner, course); the
// version column detects concurrent writers.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// LoadSession returns the session for the given learner and course.
// Returns ErrSessionNotFound if none exists.
func (s *Store) LoadSession(learnerID, courseID string) (*types.SequencingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var document string
	var version int64
	err = db.QueryRow(
		`SELECT document, version FROM sessions WHERE learner_id = ? AND course_id = ?`,
		learnerID, courseID,
	).Scan(&document, &version)
	if err == sql.ErrNoRows {
		return nil, types.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session types.SequencingSession
	if err := json.Unmarshal([]byte(document), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s/%s: %w", learnerID, courseID, err)
	}
	// The version column is authoritative over the document copy.
	session.Version = version
	return &session, nil
}

// SaveSession persists the session. A session with version zero is
// inserted; otherwise the row is updated only when the stored version still
// matches, and the version is incremented. A stale version returns
// ErrVersionConflict without writing.
func (s *Store) SaveSession(session *types.SequencingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if session == nil {
		return types.ErrInvalidData
	}
	if err := session.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	session.UpdatedAt = now
	newVersion := session.Version + 1
	session.Version = newVersion
	document, err := json.Marshal(session)
	if err != nil {
		session.Version = newVersion - 1
		return fmt.Errorf("marshal session %s/%s: %w", session.LearnerID, session.CourseID, err)
	}

	if newVersion == 1 {
		_, err := db.Exec(
			`INSERT INTO sessions (learner_id, course_id, session_id, version, lifecycle, document, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			session.LearnerID, session.CourseID, session.SessionID, newVersion,
			session.Lifecycle, string(document), formatTime(session.CreatedAt), formatTime(now),
		)
		if err != nil {
			session.Version = 0
			// A concurrent insert surfaces as a primary-key violation.
			if rowExists(db, session.LearnerID, session.CourseID) {
				return types.ErrVersionConflict
			}
			return err
		}
		return nil
	}

	res, err := db.Exec(
		`UPDATE sessions SET version = ?, lifecycle = ?, document = ?, updated_at = ?
         WHERE learner_id = ? AND course_id = ? AND version = ?`,
		newVersion, session.Lifecycle, string(document), formatTime(now),
		session.LearnerID, session.CourseID, newVersion-1,
	)
	if err != nil {
		session.Version = newVersion - 1
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		session.Version = newVersion - 1
		return err
	}
	if affected == 0 {
		session.Version = newVersion - 1
		return types.ErrVersionConflict
	}
	return nil
}

// DeleteSession removes the session for the given learner and course.
// Returns ErrSessionNotFound if none exists.
func (s *Store) DeleteSession(learnerID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec(`DELETE FROM sessions WHERE learner_id = ? AND course_id = ?`, learnerID, courseID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return types.ErrSessionNotFound
	}
	return nil
}

// rowExists reports whether a session row exists for the key.
func rowExists(db *sql.DB, learnerID, courseID string) bool {
	var one int
	err := db.QueryRow(
		`SELECT 1 FROM sessions WHERE learner_id = ? AND course_id = ?`,
		learnerID, courseID,
	).Scan(&one)
	return err == nil
}
