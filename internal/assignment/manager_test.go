package assignment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"opsdesk/internal/assignment"
	"opsdesk/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	assignments []database.Assignment
	createErr   error
	deleteErr   error
	createCalls int
	deleteCalls int

	// When set, CreateAssignment signals entered and then waits for
	// release (or context cancellation) before returning.
	entered chan struct{}
	release chan struct{}
}

func (s *fakeStore) ListAssignments(ctx context.Context) ([]database.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]database.Assignment(nil), s.assignments...), nil
}

func (s *fakeStore) ListAssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]database.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []database.Assignment
	for _, a := range s.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateAssignment(ctx context.Context, params database.CreateAssignmentParams) (database.Assignment, error) {
	s.mu.Lock()
	s.createCalls++
	entered, release, err := s.entered, s.release, s.createErr
	s.mu.Unlock()

	if entered != nil {
		close(entered)
		select {
		case <-release:
		case <-ctx.Done():
			return database.Assignment{}, ctx.Err()
		}
	}
	if err != nil {
		return database.Assignment{}, err
	}

	a := database.Assignment{
		ID:           uuid.New(),
		UserID:       params.UserID,
		ContractorID: params.ContractorID,
	}
	s.mu.Lock()
	s.assignments = append(s.assignments, a)
	s.mu.Unlock()
	return a, nil
}

func (s *fakeStore) DeleteAssignment(ctx context.Context, userID, contractorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if a.UserID != userID || a.ContractorID != contractorID {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
	return nil
}

func newManager(t *testing.T, store assignment.Store) *assignment.Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return assignment.NewManager(logger, store, time.Second)
}

func TestGrant(t *testing.T) {
	userID := uuid.New()
	contractorID := uuid.New()

	t.Run("success_adds_to_index", func(t *testing.T) {
		store := &fakeStore{}
		m := newManager(t, store)

		outcome, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)
		assert.Equal(t, assignment.OutcomeGranted, outcome)
		assert.True(t, m.Assigned(userID, contractorID))
		assert.Equal(t, 1, store.createCalls)
		assert.Equal(t, userID, m.ActiveUser())
	})

	t.Run("duplicate_is_informational_and_skips_store", func(t *testing.T) {
		store := &fakeStore{}
		m := newManager(t, store)

		_, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)

		outcome, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)
		assert.Equal(t, assignment.OutcomeAlreadyAssigned, outcome)
		assert.Equal(t, 1, store.createCalls)
		assert.ElementsMatch(t, []uuid.UUID{contractorID}, m.Contractors(userID))
	})

	t.Run("store_failure_rolls_back", func(t *testing.T) {
		store := &fakeStore{createErr: errors.New("connection reset")}
		m := newManager(t, store)

		before := m.Contractors(userID)

		_, err := m.Grant(context.Background(), userID, contractorID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, assignment.ErrBusy)
		assert.ElementsMatch(t, before, m.Contractors(userID))
		assert.False(t, m.Assigned(userID, contractorID))
	})

	t.Run("unique_violation_keeps_optimistic_state", func(t *testing.T) {
		store := &fakeStore{createErr: database.ErrAssignmentExists}
		m := newManager(t, store)

		outcome, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)
		assert.Equal(t, assignment.OutcomeAlreadyAssigned, outcome)
		// The concurrent winner created the same pair, so no rollback.
		assert.True(t, m.Assigned(userID, contractorID))
	})

	t.Run("second_operation_rejected_while_pending", func(t *testing.T) {
		store := &fakeStore{
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		m := newManager(t, store)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := m.Grant(context.Background(), userID, contractorID)
			assert.NoError(t, err)
		}()

		<-store.entered

		otherUser := uuid.New()
		_, err := m.Grant(context.Background(), otherUser, uuid.New())
		assert.ErrorIs(t, err, assignment.ErrBusy)
		assert.Empty(t, m.Contractors(otherUser))

		_, err = m.Revoke(context.Background(), userID, contractorID)
		assert.ErrorIs(t, err, assignment.ErrBusy)

		close(store.release)
		<-done
		assert.True(t, m.Assigned(userID, contractorID))
	})

	t.Run("timeout_clears_pending_and_rolls_back", func(t *testing.T) {
		store := &fakeStore{
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		m := assignment.NewManager(logger, store, 20*time.Millisecond)

		_, err := m.Grant(context.Background(), userID, contractorID)
		require.ErrorIs(t, err, assignment.ErrTimeout)
		assert.False(t, m.Assigned(userID, contractorID))

		// The pending flag was force-cleared; the next grant proceeds.
		store.mu.Lock()
		store.entered, store.release = nil, nil
		store.mu.Unlock()

		outcome, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)
		assert.Equal(t, assignment.OutcomeGranted, outcome)
	})
}

func TestRevoke(t *testing.T) {
	userID := uuid.New()
	contractorID := uuid.New()

	t.Run("success_removes_from_index", func(t *testing.T) {
		store := &fakeStore{}
		m := newManager(t, store)

		_, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)

		outcome, err := m.Revoke(context.Background(), userID, contractorID)
		require.NoError(t, err)
		assert.Equal(t, assignment.OutcomeRevoked, outcome)
		assert.False(t, m.Assigned(userID, contractorID))
		assert.Equal(t, 1, store.deleteCalls)
	})

	t.Run("store_failure_rolls_back", func(t *testing.T) {
		store := &fakeStore{}
		m := newManager(t, store)

		_, err := m.Grant(context.Background(), userID, contractorID)
		require.NoError(t, err)

		store.mu.Lock()
		store.deleteErr = errors.New("connection reset")
		store.mu.Unlock()

		_, err = m.Revoke(context.Background(), userID, contractorID)
		require.Error(t, err)
		assert.True(t, m.Assigned(userID, contractorID))
	})
}

func TestLoadAll(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	c1, c2, c3 := uuid.New(), uuid.New(), uuid.New()

	store := &fakeStore{assignments: []database.Assignment{
		{ID: uuid.New(), UserID: u1, ContractorID: c1},
		{ID: uuid.New(), UserID: u1, ContractorID: c2},
		{ID: uuid.New(), UserID: u2, ContractorID: c3},
	}}
	m := newManager(t, store)

	require.NoError(t, m.LoadAll(context.Background()))
	assert.ElementsMatch(t, []uuid.UUID{c1, c2}, m.Contractors(u1))
	assert.ElementsMatch(t, []uuid.UUID{c3}, m.Contractors(u2))

	// A reload replaces the whole index, dropping stale entries.
	store.mu.Lock()
	store.assignments = []database.Assignment{
		{ID: uuid.New(), UserID: u2, ContractorID: c3},
	}
	store.mu.Unlock()

	require.NoError(t, m.LoadAll(context.Background()))
	assert.Empty(t, m.Contractors(u1))
	assert.ElementsMatch(t, []uuid.UUID{c3}, m.Contractors(u2))
}

func TestLoadForUser(t *testing.T) {
	u1, u2 := uuid.New(), uuid.New()
	c1, c2, c3 := uuid.New(), uuid.New(), uuid.New()

	store := &fakeStore{assignments: []database.Assignment{
		{ID: uuid.New(), UserID: u1, ContractorID: c1},
		{ID: uuid.New(), UserID: u2, ContractorID: c2},
	}}
	m := newManager(t, store)
	require.NoError(t, m.LoadAll(context.Background()))

	// u2 changes externally; only its entry is refreshed.
	store.mu.Lock()
	store.assignments = []database.Assignment{
		{ID: uuid.New(), UserID: u2, ContractorID: c2},
		{ID: uuid.New(), UserID: u2, ContractorID: c3},
	}
	store.mu.Unlock()

	require.NoError(t, m.LoadForUser(context.Background(), u2))
	assert.ElementsMatch(t, []uuid.UUID{c2, c3}, m.Contractors(u2))
	assert.ElementsMatch(t, []uuid.UUID{c1}, m.Contractors(u1))
}

func TestSnapshotIsACopy(t *testing.T) {
	userID := uuid.New()
	contractorID := uuid.New()

	store := &fakeStore{}
	m := newManager(t, store)
	_, err := m.Grant(context.Background(), userID, contractorID)
	require.NoError(t, err)

	snap := m.Snapshot()
	snap[userID] = nil
	snap[uuid.New()] = []uuid.UUID{uuid.New()}

	assert.True(t, m.Assigned(userID, contractorID))
}
