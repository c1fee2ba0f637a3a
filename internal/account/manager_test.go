package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"opsdesk/internal/account"
	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users map[string]database.User
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	user, ok := s.users[email]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return user, nil
}

type fakeLimiter struct {
	blocked bool
	resets  int
}

func (l *fakeLimiter) CheckLogin(ctx context.Context, email string) error {
	if l.blocked {
		return ratelimit.ErrTooManyAttempts
	}
	return nil
}

func (l *fakeLimiter) Reset(ctx context.Context, email string) {
	l.resets++
}

func TestLogin(t *testing.T) {
	password := "correct horse battery staple"
	hash, err := account.HashPassword(password)
	require.NoError(t, err)

	activeUser := database.User{
		ID:           uuid.New(),
		Name:         "John Smith",
		Email:        "john@opsdesk.in",
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
	}
	disabledUser := activeUser
	disabledUser.Email = "gone@opsdesk.in"
	disabledUser.IsActive = false

	tests := []struct {
		name        string
		email       string
		password    string
		blocked     bool
		expectedErr error
	}{
		{name: "success", email: "john@opsdesk.in", password: password},
		{name: "wrong_password", email: "john@opsdesk.in", password: "nope", expectedErr: account.ErrInvalidCredentials},
		{name: "unknown_email", email: "nobody@opsdesk.in", password: password, expectedErr: account.ErrInvalidCredentials},
		{name: "disabled_account", email: "gone@opsdesk.in", password: password, expectedErr: account.ErrAccountDisabled},
		{name: "rate_limited", email: "john@opsdesk.in", password: password, blocked: true, expectedErr: ratelimit.ErrTooManyAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{users: map[string]database.User{
				activeUser.Email:   activeUser,
				disabledUser.Email: disabledUser,
			}}
			limiter := &fakeLimiter{blocked: tt.blocked}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			m := account.NewManager(logger, store, limiter, audit.NopRecorder{})

			user, err := m.Login(context.Background(), account.LoginParams{
				Email:    tt.email,
				Password: tt.password,
			})
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Zero(t, limiter.resets)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, activeUser.ID, user.ID)
			assert.Equal(t, 1, limiter.resets)
		})
	}
}
