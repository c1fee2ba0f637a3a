// Package web exposes the JSON API the dashboard frontend consumes.
package web

import (
	"context"
	"io"
	"log/slog"

	"opsdesk/internal/account"
	"opsdesk/internal/assignment"
	"opsdesk/internal/audit"
	"opsdesk/internal/dashboard"
	"opsdesk/internal/database"
	"opsdesk/internal/lead"
	"opsdesk/internal/order"
	"opsdesk/internal/user"
	"opsdesk/internal/validator"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// UploadLimiter throttles attachment uploads per actor.
// *ratelimit.Limiter satisfies it.
type UploadLimiter interface {
	CheckUpload(ctx context.Context, actorID string) error
}

// AttachmentStorage stores uploaded files and resolves their public
// URLs. *storage.S3Storage satisfies it.
type AttachmentStorage interface {
	Store(ctx context.Context, actorID uuid.UUID, filename string, content io.Reader, contentType string) (string, error)
	PublicURL(key string) string
}

type Handler struct {
	logger       *slog.Logger
	sessionStore *session.Store
	validate     *validator.Validator
	db           *database.Database
	accounts     account.Manager
	users        user.Manager
	leads        lead.Manager
	orders       order.Manager
	dashboards   dashboard.Manager
	assignments  *assignment.Manager
	storage      AttachmentStorage
	limiter      UploadLimiter
	auditor      audit.Recorder
}

type HandlerParams struct {
	Logger       *slog.Logger
	SessionStore *session.Store
	Validator    *validator.Validator
	DB           *database.Database
	Accounts     account.Manager
	Users        user.Manager
	Leads        lead.Manager
	Orders       order.Manager
	Dashboards   dashboard.Manager
	Assignments  *assignment.Manager
	Storage      AttachmentStorage
	Limiter      UploadLimiter
	Auditor      audit.Recorder
}

func NewHandler(params HandlerParams) *Handler {
	return &Handler{
		logger:       params.Logger,
		sessionStore: params.SessionStore,
		validate:     params.Validator,
		db:           params.DB,
		accounts:     params.Accounts,
		users:        params.Users,
		leads:        params.Leads,
		orders:       params.Orders,
		dashboards:   params.Dashboards,
		assignments:  params.Assignments,
		storage:      params.Storage,
		limiter:      params.Limiter,
		auditor:      params.Auditor,
	}
}
