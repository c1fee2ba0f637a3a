package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users map[uuid.UUID]database.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[uuid.UUID]database.User{}}
}

func (s *fakeStore) CreateUser(ctx context.Context, params database.CreateUserParams) (database.User, error) {
	u := database.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		Pages:        params.Pages,
		IsActive:     true,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) ListUsers(ctx context.Context, params database.ListUsersParams) ([]database.User, error) {
	var out []database.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	u, ok := s.users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, database.ErrUserNotFound
}

func (s *fakeStore) UpdateUserByID(ctx context.Context, id uuid.UUID, params database.UpdateUserParams) error {
	u, ok := s.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	if params.Role.IsSet {
		u.Role = params.Role.Val
	}
	if params.Pages.IsSet {
		u.Pages = params.Pages.Val
	}
	if params.PasswordHash.IsSet {
		u.PasswordHash = params.PasswordHash.Val
	}
	if params.IsActive.IsSet {
		u.IsActive = params.IsActive.Val
	}
	s.users[id] = u
	return nil
}

func (s *fakeStore) DeleteUserByID(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.users[id]; !ok {
		return database.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func newManager(t *testing.T, store *fakeStore) user.Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.NewManager(logger, store, audit.NopRecorder{})
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	m := newManager(t, store)
	actorID := uuid.New()

	created, err := m.Create(context.Background(), user.CreateParams{
		Name:     "Priya Rao",
		Email:    "priya@opsdesk.in",
		Password: "S3cret!pass",
		Role:     user.RoleSales,
		ActorID:  actorID,
	})
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleSales), created.Role)
	assert.ElementsMatch(t, []string{user.PageDashboard, user.PageLeads, user.PageContractors}, created.Pages)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("S3cret!pass")))

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := m.Create(context.Background(), user.CreateParams{
			Name:     "Priya Again",
			Email:    "priya@opsdesk.in",
			Password: "whatever",
			Role:     user.RoleSales,
			ActorID:  actorID,
		})
		assert.ErrorIs(t, err, user.ErrEmailAlreadyInUse)
	})

	t.Run("invalid_role", func(t *testing.T) {
		_, err := m.Create(context.Background(), user.CreateParams{
			Name:     "Bad Role",
			Email:    "bad@opsdesk.in",
			Password: "whatever",
			Role:     user.Role("superuser"),
			ActorID:  actorID,
		})
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})
}

func TestChangeRoleResetsPages(t *testing.T) {
	store := newFakeStore()
	m := newManager(t, store)
	actorID := uuid.New()

	created, err := m.Create(context.Background(), user.CreateParams{
		Name:     "Anil Gupta",
		Email:    "anil@opsdesk.in",
		Password: "S3cret!pass",
		Role:     user.RoleSales,
		ActorID:  actorID,
	})
	require.NoError(t, err)

	require.NoError(t, m.ChangeRole(context.Background(), actorID, created.ID, user.RoleAdmin))

	got, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleAdmin), got.Role)
	assert.ElementsMatch(t, user.DefaultPages(user.RoleAdmin), got.Pages)
}

func TestSetPages(t *testing.T) {
	store := newFakeStore()
	m := newManager(t, store)
	actorID := uuid.New()

	created, err := m.Create(context.Background(), user.CreateParams{
		Name:     "Anil Gupta",
		Email:    "anil@opsdesk.in",
		Password: "S3cret!pass",
		Role:     user.RoleSales,
		ActorID:  actorID,
	})
	require.NoError(t, err)

	custom := []string{user.PageDashboard, user.PageOrders}
	require.NoError(t, m.SetPages(context.Background(), actorID, created.ID, custom))

	got, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, custom, got.Pages)
	assert.True(t, user.CanAccess(got, user.PageOrders))
	assert.False(t, user.CanAccess(got, user.PageUsers))
}

func TestDeactivate(t *testing.T) {
	store := newFakeStore()
	m := newManager(t, store)
	actorID := uuid.New()

	created, err := m.Create(context.Background(), user.CreateParams{
		Name:     "Anil Gupta",
		Email:    "anil@opsdesk.in",
		Password: "S3cret!pass",
		Role:     user.RoleSales,
		ActorID:  actorID,
	})
	require.NoError(t, err)

	require.NoError(t, m.Deactivate(context.Background(), actorID, created.ID))

	got, err := m.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDefaultPagesReturnsCopy(t *testing.T) {
	pages := user.DefaultPages(user.RoleSales)
	pages[0] = "tampered"
	assert.NotContains(t, user.DefaultPages(user.RoleSales), "tampered")
}
