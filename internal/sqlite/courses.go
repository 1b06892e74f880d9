// Course persistence. The full activity tree definition is stored as one
// JSON document per course; structural queries happen in memory.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// SaveCourse creates or replaces a course definition.
func (s *Store) SaveCourse(course *types.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if course == nil || course.CourseID == "" {
		return types.ErrInvalidID
	}

	definition, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course %s: %w", course.CourseID, err)
	}
	createdAt := course.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.Exec(
		`INSERT INTO courses (course_id, title, definition, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(course_id) DO UPDATE SET title = excluded.title, definition = excluded.definition`,
		course.CourseID, course.Title, string(definition), formatTime(createdAt),
	)
	return err
}

// GetCourse returns the course with the given id.
// Returns ErrCourseNotFound if no course exists with that id.
func (s *Store) GetCourse(courseID string) (*types.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var definition string
	err = db.QueryRow(`SELECT definition FROM courses WHERE course_id = ?`, courseID).Scan(&definition)
	if err == sql.ErrNoRows {
		return nil, types.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	var course types.Course
	if err := json.Unmarshal([]byte(definition), &course); err != nil {
		return nil, fmt.Errorf("unmarshal course %s: %w", courseID, err)
	}
	return &course, nil
}

// ListCourses returns all stored courses ordered by id.
func (s *Store) ListCourses() ([]*types.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT definition FROM courses ORDER BY course_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*types.Course
	for rows.Next() {
		var definition string
		if err := rows.Scan(&definition); err != nil {
			return nil, err
		}
		var course types.Course
		if err := json.Unmarshal([]byte(definition), &course); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}
	return courses, rows.Err()
}
