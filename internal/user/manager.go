// Package user handles administration of dashboard users: creation,
// role changes and the page-access tokens that drive the navigation
// menu.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"opsdesk/internal/account"
	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/util"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSales:
		return true
	default:
		return false
	}
}

// Page-access tokens. Order is irrelevant; the set on the user record
// decides which dashboard pages the navigation shows.
const (
	PageDashboard   = "dashboard"
	PageOrders      = "orders"
	PageLeads       = "leads"
	PageContractors = "contractors"
	PageUsers       = "users"
	PageSettings    = "settings"
)

// defaultPages is the grant set each role starts with. Admins can still
// tailor the set per user afterwards.
var defaultPages = map[Role][]string{
	RoleAdmin:   {PageDashboard, PageOrders, PageLeads, PageContractors, PageUsers, PageSettings},
	RoleManager: {PageDashboard, PageOrders, PageLeads, PageContractors},
	RoleSales:   {PageDashboard, PageLeads, PageContractors},
}

func DefaultPages(role Role) []string {
	return slices.Clone(defaultPages[role])
}

var (
	ErrInvalidRole       = errors.New("user: invalid role")
	ErrEmailAlreadyInUse = errors.New("user: email already in use")
)

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	CreateUser(ctx context.Context, params database.CreateUserParams) (database.User, error)
	ListUsers(ctx context.Context, params database.ListUsersParams) ([]database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	UpdateUserByID(ctx context.Context, id uuid.UUID, params database.UpdateUserParams) error
	DeleteUserByID(ctx context.Context, id uuid.UUID) error
}

type Manager struct {
	logger  *slog.Logger
	store   Store
	auditor audit.Recorder
}

func NewManager(logger *slog.Logger, store Store, auditor audit.Recorder) Manager {
	return Manager{logger: logger, store: store, auditor: auditor}
}

type CreateParams struct {
	Name     string
	Email    string
	Password string
	Role     Role
	ActorID  uuid.UUID
}

// Create registers a user with the role's default page set.
func (m *Manager) Create(ctx context.Context, params CreateParams) (database.User, error) {
	var user database.User

	if !params.Role.IsValid() {
		return user, fmt.Errorf("%w: %q", ErrInvalidRole, params.Role)
	}

	_, err := m.store.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return user, ErrEmailAlreadyInUse
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return user, fmt.Errorf("failed to check if user exists: %w", err)
	}

	hash, err := account.HashPassword(params.Password)
	if err != nil {
		return user, err
	}

	user, err = m.store.CreateUser(ctx, database.CreateUserParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         string(params.Role),
		Pages:        DefaultPages(params.Role),
	})
	if err != nil {
		return user, fmt.Errorf("failed to create user: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: params.ActorID,
		Type:    audit.EventTypeUserCreate,
		Data:    map[string]any{"user": user.ID.String(), "role": user.Role},
	}); err != nil {
		m.logger.Warn("failed to audit user creation", "user", user.ID, "error", err)
	}

	return user, nil
}

func (m *Manager) List(ctx context.Context) ([]database.User, error) {
	users, err := m.store.ListUsers(ctx, database.ListUsersParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.User, error) {
	return m.store.GetUserByID(ctx, id)
}

// ChangeRole switches the role and resets the page set to the new
// role's defaults.
func (m *Manager) ChangeRole(ctx context.Context, actorID, id uuid.UUID, role Role) error {
	if !role.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	if err := m.store.UpdateUserByID(ctx, id, database.UpdateUserParams{
		Role:  util.Some(string(role)),
		Pages: util.Some(DefaultPages(role)),
	}); err != nil {
		return fmt.Errorf("failed to change role: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeUserUpdate,
		Data:    map[string]any{"user": id.String(), "role": string(role)},
	}); err != nil {
		m.logger.Warn("failed to audit role change", "user", id, "error", err)
	}
	return nil
}

// SetPages replaces the user's page-access tokens with an explicit set.
func (m *Manager) SetPages(ctx context.Context, actorID, id uuid.UUID, pages []string) error {
	if err := m.store.UpdateUserByID(ctx, id, database.UpdateUserParams{
		Pages: util.Some(slices.Clone(pages)),
	}); err != nil {
		return fmt.Errorf("failed to set pages: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeUserUpdate,
		Data:    map[string]any{"user": id.String(), "pages": pages},
	}); err != nil {
		m.logger.Warn("failed to audit page change", "user", id, "error", err)
	}
	return nil
}

// ResetPassword sets a new password on behalf of an administrator.
func (m *Manager) ResetPassword(ctx context.Context, actorID, id uuid.UUID, password string) error {
	hash, err := account.HashPassword(password)
	if err != nil {
		return err
	}

	if err := m.store.UpdateUserByID(ctx, id, database.UpdateUserParams{
		PasswordHash: util.Some(hash),
	}); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypePasswordResetByAdmin,
		Data:    map[string]any{"user": id.String()},
	}); err != nil {
		m.logger.Warn("failed to audit password reset", "user", id, "error", err)
	}
	return nil
}

// Deactivate disables login without deleting history.
func (m *Manager) Deactivate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := m.store.UpdateUserByID(ctx, id, database.UpdateUserParams{
		IsActive: util.Some(false),
	}); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeUserDelete,
		Data:    map[string]any{"user": id.String()},
	}); err != nil {
		m.logger.Warn("failed to audit deactivation", "user", id, "error", err)
	}
	return nil
}

// CanAccess reports whether the user's page tokens include the page.
func CanAccess(u database.User, page string) bool {
	return slices.Contains(u.Pages, page)
}
