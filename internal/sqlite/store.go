// SQLite-backed SessionStore: attach/detach lifecycle and connection
// management.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "pathway.db"

// Store implements types.SessionStore using a single SQLite database as the
// source of truth for courses, sessions, and the navigation log.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates a new SQLite store instance.
// The store is not attached; call Attach with a Config to initialize.
func NewStore() *Store {
	return &Store{}
}

// Attach initializes the store with the given configuration.
// Creates DataDir if it does not exist and initializes the SQLite schema.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return err
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return err
		}
	}

	s.db = db
	s.config = config
	s.attached = true
	return nil
}

// Detach releases the database connection. After Detach, all operations
// return ErrStoreDetached. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil // idempotent
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}

// conn returns the database handle while holding the read lock, or
// ErrStoreDetached when the store is not attached.
func (s *Store) conn() (*sql.DB, error) {
	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.db, nil
}

// formatTime serializes a timestamp for TEXT columns.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserializes a TEXT column timestamp. A malformed value yields
// the zero time rather than an error; the column is informational.
func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
