package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pathway/pkg/sequencing"
	"github.com/mesh-intelligence/pathway/pkg/types"
)

func TestSessionSaveAndLoad(t *testing.T) {
	store := attachedStore(t)

	session := types.NewSession("learner-1", "course-1")
	session.SessionID = "0191e6a0-0000-7000-8000-000000000001"
	session.Global.CurrentActivityID = "a"
	session.Global.AvailableChildren = []string{"a", "b"}
	state := session.State("a")
	state.Attempted = true
	state.AttemptCount = 2
	state.ObjectiveMeasureKnown = true
	state.ObjectiveNormalizedMeasure = 0.75
	state.SuspendData = "page=4"

	require.NoError(t, store.SaveSession(session))
	assert.Equal(t, int64(1), session.Version, "first save assigns version 1")

	loaded, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)

	assert.Equal(t, session.SessionID, loaded.SessionID)
	assert.Equal(t, types.LifecycleNotStarted, loaded.Lifecycle)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Equal(t, "a", loaded.Global.CurrentActivityID)
	assert.Equal(t, []string{"a", "b"}, loaded.Global.AvailableChildren)

	ls := loaded.StateOf("a")
	assert.True(t, ls.Attempted)
	assert.Equal(t, 2, ls.AttemptCount)
	assert.InDelta(t, 0.75, ls.ObjectiveNormalizedMeasure, 1e-9)
	assert.Equal(t, "page=4", ls.SuspendData)
}

func TestSessionRoundTripPreservesProcessing(t *testing.T) {
	store := attachedStore(t)

	tree, err := sequencing.NewTree(sampleCourse("course-1"))
	require.NoError(t, err)
	proc := sequencing.NewProcessor(tree)

	session := types.NewSession("learner-1", "course-1")
	session, resp, err := proc.Process(session, types.NavigationRequest{Type: types.RequestStart})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.NoError(t, store.SaveSession(session))
	loaded, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)

	// The same request processed against the saved copy and the loaded copy
	// must produce identical outcomes.
	request := types.NavigationRequest{Type: types.RequestContinue}
	fromMemory, memResp, err := proc.Process(session, request)
	require.NoError(t, err)
	fromStore, storeResp, err := proc.Process(loaded, request)
	require.NoError(t, err)

	assert.Equal(t, memResp, storeResp)
	assert.Equal(t, fromMemory.Lifecycle, fromStore.Lifecycle)
	assert.Equal(t, fromMemory.Global, fromStore.Global)
	assert.Equal(t, fromMemory.Activities, fromStore.Activities)
}

func TestSessionLoadNotFound(t *testing.T) {
	store := attachedStore(t)

	_, err := store.LoadSession("learner-1", "course-1")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestSessionUpdateIncrementsVersion(t *testing.T) {
	store := attachedStore(t)

	session := types.NewSession("learner-1", "course-1")
	require.NoError(t, store.SaveSession(session))

	session.Global.CurrentActivityID = "b"
	require.NoError(t, store.SaveSession(session))
	assert.Equal(t, int64(2), session.Version)

	loaded, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
	assert.Equal(t, "b", loaded.Global.CurrentActivityID)
}

func TestSessionVersionConflict(t *testing.T) {
	store := attachedStore(t)

	session := types.NewSession("learner-1", "course-1")
	require.NoError(t, store.SaveSession(session))

	// Two copies loaded at the same version.
	first, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)
	second, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)

	first.Global.CurrentActivityID = "a"
	require.NoError(t, store.SaveSession(first))

	// The second writer is stale and must be refused without clobbering.
	second.Global.CurrentActivityID = "b"
	err = store.SaveSession(second)
	assert.ErrorIs(t, err, types.ErrVersionConflict)
	assert.Equal(t, int64(1), second.Version, "a failed save leaves the version untouched")

	loaded, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Global.CurrentActivityID)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestSessionInsertConflict(t *testing.T) {
	store := attachedStore(t)

	require.NoError(t, store.SaveSession(types.NewSession("learner-1", "course-1")))

	// A second version-zero insert for the same key is a concurrent create.
	err := store.SaveSession(types.NewSession("learner-1", "course-1"))
	assert.ErrorIs(t, err, types.ErrVersionConflict)
}

func TestSessionSaveInvalid(t *testing.T) {
	store := attachedStore(t)

	assert.ErrorIs(t, store.SaveSession(nil), types.ErrInvalidData)
	assert.ErrorIs(t, store.SaveSession(types.NewSession("", "course-1")), types.ErrInvalidID)

	bad := types.NewSession("learner-1", "course-1")
	bad.Lifecycle = "paused"
	assert.ErrorIs(t, store.SaveSession(bad), types.ErrInvalidLifecycle)
}

func TestSessionDelete(t *testing.T) {
	store := attachedStore(t)

	require.NoError(t, store.SaveSession(types.NewSession("learner-1", "course-1")))
	require.NoError(t, store.DeleteSession("learner-1", "course-1"))

	_, err := store.LoadSession("learner-1", "course-1")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)

	err = store.DeleteSession("learner-1", "course-1")
	assert.ErrorIs(t, err, types.ErrSessionNotFound)
}

func TestSessionsKeyedByLearnerAndCourse(t *testing.T) {
	store := attachedStore(t)

	s1 := types.NewSession("learner-1", "course-1")
	s1.Global.CurrentActivityID = "a"
	s2 := types.NewSession("learner-2", "course-1")
	s2.Global.CurrentActivityID = "b"
	s3 := types.NewSession("learner-1", "course-2")
	s3.Global.CurrentActivityID = "c"

	require.NoError(t, store.SaveSession(s1))
	require.NoError(t, store.SaveSession(s2))
	require.NoError(t, store.SaveSession(s3))

	loaded, err := store.LoadSession("learner-1", "course-1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Global.CurrentActivityID)

	loaded, err = store.LoadSession("learner-2", "course-1")
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.Global.CurrentActivityID)

	loaded, err = store.LoadSession("learner-1", "course-2")
	require.NoError(t, err)
	assert.Equal(t, "c", loaded.Global.CurrentActivityID)
}
