// Service: the caller-side glue between the store and the processor. It
// owns per-session mutual exclusion, session creation on first start, the
// save-conflict retry, and the navigation audit log. The processor itself
// stays free of I/O.
package sequencing

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pathway/pkg/types"
)

// saveRetries is the number of fresh-load retries after a version conflict.
const saveRetries = 3

// Service processes navigation requests end to end: load session, process,
// save, log. Sessions for different (learner, course) pairs proceed in
// parallel; requests for the same pair are serialized.
type Service struct {
	store types.SessionStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	procs map[string]*Processor
}

// NewService creates a Service over an attached store.
func NewService(store types.SessionStore) *Service {
	return &Service{
		store: store,
		locks: make(map[string]*sync.Mutex),
		procs: make(map[string]*Processor),
	}
}

// sessionLock returns the mutex serializing one (learner, course) pair.
func (s *Service) sessionLock(learnerID, courseID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := learnerID + "\x00" + courseID
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// processor returns the cached processor for a course, building the
// activity tree on first use.
func (s *Service) processor(courseID string) (*Processor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.procs[courseID]; ok {
		return p, nil
	}
	course, err := s.store.GetCourse(courseID)
	if err != nil {
		return nil, err
	}
	tree, err := NewTree(course)
	if err != nil {
		return nil, fmt.Errorf("build tree for course %s: %w", courseID, err)
	}
	p := NewProcessor(tree)
	s.procs[courseID] = p
	return p, nil
}

// Navigate processes one navigation request for a learner and course. A
// start request creates the session if none exists. The updated session is
// saved with optimistic concurrency; a version conflict retries the whole
// request from a fresh load, never merging.
func (s *Service) Navigate(learnerID, courseID string, request types.NavigationRequest) (types.NavigationResponse, error) {
	lock := s.sessionLock(learnerID, courseID)
	lock.Lock()
	defer lock.Unlock()

	proc, err := s.processor(courseID)
	if err != nil {
		return types.NavigationResponse{}, err
	}

	var resp types.NavigationResponse
	for attempt := 0; ; attempt++ {
		session, err := s.loadOrCreate(learnerID, courseID, request.Type)
		if err != nil {
			return types.NavigationResponse{}, err
		}

		next, r, err := proc.Process(session, request)
		if err != nil {
			return types.NavigationResponse{}, err
		}
		resp = r
		if !resp.Success {
			// Nothing to persist; the session is unchanged.
			break
		}

		err = s.store.SaveSession(next)
		if err == nil {
			break
		}
		if err != types.ErrVersionConflict || attempt >= saveRetries {
			return types.NavigationResponse{}, err
		}
	}

	if err := s.appendLog(learnerID, courseID, request, resp); err != nil {
		return types.NavigationResponse{}, err
	}
	return resp, nil
}

// RecordProgress applies a runtime progress report and saves the session,
// with the same conflict-retry policy as Navigate.
func (s *Service) RecordProgress(learnerID, courseID string, report ProgressReport) error {
	lock := s.sessionLock(learnerID, courseID)
	lock.Lock()
	defer lock.Unlock()

	proc, err := s.processor(courseID)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		session, err := s.store.LoadSession(learnerID, courseID)
		if err != nil {
			return err
		}
		next, err := proc.RecordProgress(session, report)
		if err != nil {
			return err
		}
		err = s.store.SaveSession(next)
		if err == nil {
			return nil
		}
		if err != types.ErrVersionConflict || attempt >= saveRetries {
			return err
		}
	}
}

// Session returns the stored session for a learner and course.
func (s *Service) Session(learnerID, courseID string) (*types.SequencingSession, error) {
	return s.store.LoadSession(learnerID, courseID)
}

// loadOrCreate loads the session, creating a fresh not-started one when the
// request is a start and none exists yet.
func (s *Service) loadOrCreate(learnerID, courseID, requestType string) (*types.SequencingSession, error) {
	session, err := s.store.LoadSession(learnerID, courseID)
	if err == types.ErrSessionNotFound && requestType == types.RequestStart {
		session = types.NewSession(learnerID, courseID)
		session.SessionID = newID()
		return session, nil
	}
	return session, err
}

// appendLog records the processed request in the navigation audit log.
func (s *Service) appendLog(learnerID, courseID string, request types.NavigationRequest, resp types.NavigationResponse) error {
	return s.store.AppendLog(&types.NavigationLogEntry{
		EntryID:           newID(),
		LearnerID:         learnerID,
		CourseID:          courseID,
		RequestType:       request.Type,
		TargetID:          request.TargetID,
		Success:           resp.Success,
		Exception:         resp.Exception,
		CurrentActivityID: resp.CurrentActivityID,
		CreatedAt:         time.Now().UTC(),
	})
}

// newID generates a UUID v7 for session and log-entry IDs.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
