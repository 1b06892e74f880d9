package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// attachedStore creates a store attached to a fresh temporary database and
// detaches it on cleanup.
func attachedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	err := store.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Detach() })
	return store
}

func TestStoreAttach(t *testing.T) {
	tmpDir := t.TempDir()

	store := NewStore()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := store.Attach(config)
	require.NoError(t, err)
	defer store.Detach()

	// The database file exists after attach.
	dbPath := filepath.Join(tmpDir, "pathway.db")
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// Double attach fails.
	err = store.Attach(config)
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestStoreAttachInvalidConfig(t *testing.T) {
	store := NewStore()

	err := store.Attach(types.Config{Backend: "", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	err = store.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestStoreDetach(t *testing.T) {
	store := attachedStore(t)

	err := store.Detach()
	require.NoError(t, err)

	// Idempotent.
	err = store.Detach()
	assert.NoError(t, err)

	// Operations fail after detach.
	_, err = store.GetCourse("course-1")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = store.LoadSession("learner-1", "course-1")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	err = store.SaveSession(types.NewSession("learner-1", "course-1"))
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestStoreReattach(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: tmpDir}

	store := NewStore()
	require.NoError(t, store.Attach(config))
	require.NoError(t, store.SaveCourse(&types.Course{CourseID: "course-1", Title: "Course One"}))
	require.NoError(t, store.Detach())

	// The database is the source of truth; data survives a reattach.
	require.NoError(t, store.Attach(config))
	defer store.Detach()

	course, err := store.GetCourse("course-1")
	require.NoError(t, err)
	assert.Equal(t, "Course One", course.Title)
}
