// Package assignment mediates which contractors each user can see. It
// owns an in-memory index of user -> contractor ids, derived from the
// assignment table, and applies grant/revoke optimistically: the index
// changes first, the database write follows, and a failed write restores
// the snapshot taken before the change.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"opsdesk/internal/database"

	"github.com/google/uuid"
)

var (
	// ErrBusy is returned while another grant or revoke is still in
	// flight. The caller's state is untouched; retry after the pending
	// operation resolves.
	ErrBusy = errors.New("assignment: operation already in flight")

	// ErrTimeout is returned when the store call exceeds the operation
	// timeout. The pending flag is force-cleared so later operations are
	// not blocked by a stuck call.
	ErrTimeout = errors.New("assignment: operation timed out")
)

const defaultOpTimeout = 10 * time.Second

type Outcome int

const (
	OutcomeGranted Outcome = iota
	OutcomeAlreadyAssigned
	OutcomeRevoked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeAlreadyAssigned:
		return "already_assigned"
	case OutcomeRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	ListAssignments(ctx context.Context) ([]database.Assignment, error)
	ListAssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]database.Assignment, error)
	CreateAssignment(ctx context.Context, params database.CreateAssignmentParams) (database.Assignment, error)
	DeleteAssignment(ctx context.Context, userID, contractorID uuid.UUID) error
}

// Manager owns the assignment index. All mutation goes through Grant,
// Revoke, LoadAll and LoadForUser; the raw index never escapes.
type Manager struct {
	logger    *slog.Logger
	store     Store
	opTimeout time.Duration

	mu         sync.Mutex
	index      map[uuid.UUID]map[uuid.UUID]struct{}
	pending    bool
	activeUser uuid.UUID
}

// NewManager wires the manager. opTimeout <= 0 uses the default.
func NewManager(logger *slog.Logger, store Store, opTimeout time.Duration) *Manager {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Manager{
		logger:    logger,
		store:     store,
		opTimeout: opTimeout,
		index:     make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// LoadAll fetches every assignment and rebuilds the index wholesale,
// discarding any prior state.
func (m *Manager) LoadAll(ctx context.Context) error {
	assignments, err := m.store.ListAssignments(ctx)
	if err != nil {
		return fmt.Errorf("assignment: failed to load assignments: %w", err)
	}

	index := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, a := range assignments {
		set, ok := index[a.UserID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			index[a.UserID] = set
		}
		set[a.ContractorID] = struct{}{}
	}

	m.mu.Lock()
	m.index = index
	m.mu.Unlock()
	return nil
}

// LoadForUser refreshes a single user's entry, leaving every other entry
// untouched.
func (m *Manager) LoadForUser(ctx context.Context, userID uuid.UUID) error {
	assignments, err := m.store.ListAssignmentsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("assignment: failed to load assignments for user %s: %w", userID, err)
	}

	set := make(map[uuid.UUID]struct{}, len(assignments))
	for _, a := range assignments {
		set[a.ContractorID] = struct{}{}
	}

	m.mu.Lock()
	m.index[userID] = set
	m.mu.Unlock()
	return nil
}

// Grant assigns a contractor to a user. Granting an already-assigned
// pair is informational: no store call is made and the index is
// unchanged. A uniqueness violation from the store means a concurrent
// caller won the race; the optimistic state is already correct, so it is
// reported as already assigned without rollback. Any other store failure
// rolls the user's entry back to its pre-call state.
func (m *Manager) Grant(ctx context.Context, userID, contractorID uuid.UUID) (Outcome, error) {
	err := m.applyOptimistic(ctx, userID,
		func(set map[uuid.UUID]struct{}) error {
			if _, ok := set[contractorID]; ok {
				return errAlreadyAssigned
			}
			m.activeUser = userID
			set[contractorID] = struct{}{}
			return nil
		},
		func(ctx context.Context) error {
			_, err := m.store.CreateAssignment(ctx, database.CreateAssignmentParams{
				UserID:       userID,
				ContractorID: contractorID,
			})
			return err
		},
	)
	if err != nil {
		if errors.Is(err, errAlreadyAssigned) {
			// Present locally: informational, no store call was made.
			return OutcomeAlreadyAssigned, nil
		}
		if errors.Is(err, database.ErrAssignmentExists) {
			m.logger.Info("assignment already exists", "user_id", userID, "contractor_id", contractorID)
			return OutcomeAlreadyAssigned, nil
		}
		return 0, err
	}
	return OutcomeGranted, nil
}

// Revoke removes a contractor from a user. It shares the single-flight
// guard with Grant so a revoke cannot interleave with an in-flight grant
// on the same index.
func (m *Manager) Revoke(ctx context.Context, userID, contractorID uuid.UUID) (Outcome, error) {
	err := m.applyOptimistic(ctx, userID,
		func(set map[uuid.UUID]struct{}) error {
			delete(set, contractorID)
			return nil
		},
		func(ctx context.Context) error {
			return m.store.DeleteAssignment(ctx, userID, contractorID)
		},
	)
	if err != nil {
		return 0, err
	}
	return OutcomeRevoked, nil
}

// errAlreadyAssigned short-circuits a grant whose pair is already in the
// index: the mutation is abandoned before any store call.
var errAlreadyAssigned = errors.New("assignment: already assigned")

// applyOptimistic is the shared three-phase protocol: snapshot the
// user's entry, apply the speculative mutation, commit through the
// store, and restore the snapshot if the commit fails. A uniqueness
// violation is the one failure that keeps the speculative state, since
// the pair the caller wanted now exists either way. At most one commit
// is in flight at a time; a second caller gets ErrBusy without mutating
// anything. A mutate error abandons the operation before the commit.
func (m *Manager) applyOptimistic(ctx context.Context, userID uuid.UUID, mutate func(set map[uuid.UUID]struct{}) error, commit func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.pending {
		m.mu.Unlock()
		return ErrBusy
	}

	snapshot := copySet(m.index[userID])

	set, ok := m.index[userID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		m.index[userID] = set
	}
	if err := mutate(set); err != nil {
		m.mu.Unlock()
		return err
	}
	m.pending = true
	m.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	err := commit(opCtx)
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = false

	if err == nil {
		return nil
	}
	if errors.Is(err, database.ErrAssignmentExists) {
		return err
	}

	m.index[userID] = snapshot
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Warn("assignment operation timed out", "user_id", userID)
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("assignment: operation failed for user %s: %w", userID, err)
}

// Contractors returns a copy of the contractor ids granted to a user.
func (m *Manager) Contractors(userID uuid.UUID) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.index[userID]
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Assigned reports whether the pair is present in the index.
func (m *Manager) Assigned(userID, contractorID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[userID][contractorID]
	return ok
}

// ActiveUser is the user row last targeted by a grant, which the UI
// keeps expanded.
func (m *Manager) ActiveUser() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeUser
}

// Snapshot returns a deep copy of the whole index.
func (m *Manager) Snapshot() map[uuid.UUID][]uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uuid.UUID][]uuid.UUID, len(m.index))
	for userID, set := range m.index {
		ids := make([]uuid.UUID, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		out[userID] = ids
	}
	return out
}

func copySet(set map[uuid.UUID]struct{}) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}
