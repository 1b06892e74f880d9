// Navigation audit log: append-only record of processed requests.
package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// AppendLog records one processed navigation request. A missing EntryID is
// assigned a UUID v7; a missing timestamp is set to now.
func (s *Store) AppendLog(entry *types.NavigationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if entry == nil || entry.LearnerID == "" || entry.CourseID == "" {
		return types.ErrInvalidData
	}

	if entry.EntryID == "" {
		entry.EntryID = generateUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	success := 0
	if entry.Success {
		success = 1
	}
	_, err = db.Exec(
		`INSERT INTO navigation_log (entry_id, learner_id, course_id, request_type, target_id, success, exception, current_activity_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.LearnerID, entry.CourseID, entry.RequestType, entry.TargetID,
		success, entry.Exception, entry.CurrentActivityID, formatTime(entry.CreatedAt),
	)
	return err
}

// ListLog returns the navigation log for a session, oldest first.
func (s *Store) ListLog(learnerID, courseID string) ([]*types.NavigationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		`SELECT entry_id, request_type, target_id, success, exception, current_activity_id, created_at
         FROM navigation_log
         WHERE learner_id = ? AND course_id = ?
         ORDER BY created_at, entry_id`,
		learnerID, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*types.NavigationLogEntry
	for rows.Next() {
		entry := &types.NavigationLogEntry{LearnerID: learnerID, CourseID: courseID}
		var success int
		var createdAt string
		if err := rows.Scan(&entry.EntryID, &entry.RequestType, &entry.TargetID, &success, &entry.Exception, &entry.CurrentActivityID, &createdAt); err != nil {
			return nil, err
		}
		entry.Success = success != 0
		entry.CreatedAt = parseTime(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
