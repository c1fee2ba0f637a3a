// Package account authenticates dashboard users.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"opsdesk/internal/audit"
	"opsdesk/internal/database"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
}

// LoginLimiter throttles login attempts per email.
// *ratelimit.Limiter satisfies it.
type LoginLimiter interface {
	CheckLogin(ctx context.Context, email string) error
	Reset(ctx context.Context, email string)
}

type Manager struct {
	logger  *slog.Logger
	store   Store
	limiter LoginLimiter
	auditor audit.Recorder
}

func NewManager(logger *slog.Logger, store Store, limiter LoginLimiter, auditor audit.Recorder) Manager {
	return Manager{logger: logger, store: store, limiter: limiter, auditor: auditor}
}

type LoginParams struct {
	Email    string
	Password string
}

// Login verifies the password against the stored bcrypt hash. Lookup
// failures and bad passwords collapse into ErrInvalidCredentials so the
// response does not reveal which emails exist.
func (m *Manager) Login(ctx context.Context, params LoginParams) (database.User, error) {
	var user database.User

	if err := m.limiter.CheckLogin(ctx, params.Email); err != nil {
		return user, err
	}

	user, err := m.store.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return user, ErrInvalidCredentials
		}
		return user, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return database.User{}, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return database.User{}, ErrInvalidCredentials
	}

	m.limiter.Reset(ctx, params.Email)

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: user.ID,
		Type:    audit.EventTypeUserLogin,
		Data:    map[string]any{"email": user.Email},
	}); err != nil {
		m.logger.Warn("failed to audit login", "email", user.Email, "error", err)
	}

	return user, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
