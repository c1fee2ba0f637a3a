package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"opsdesk/internal/database"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeUserLogin            EventType = "user.login"
	EventTypeUserLogout           EventType = "user.logout"
	EventTypeUserCreate           EventType = "user.create"
	EventTypeUserUpdate           EventType = "user.update"
	EventTypeUserDelete           EventType = "user.delete"
	EventTypeAssignmentGrant      EventType = "assignment.grant"
	EventTypeAssignmentRevoke     EventType = "assignment.revoke"
	EventTypeLeadCreate           EventType = "lead.create"
	EventTypeLeadUpdate           EventType = "lead.update"
	EventTypeOrderCreate          EventType = "order.create"
	EventTypeOrderStatusChange    EventType = "order.status_change"
	EventTypeAttachmentUpload     EventType = "attachment.upload"
	EventTypeContractorCreate     EventType = "contractor.create"
	EventTypeContractorUpdate     EventType = "contractor.update"
	EventTypePasswordResetByAdmin EventType = "user.password_reset_by_admin"
)

type Auditor struct {
	logger *slog.Logger
	db     *database.Database
}

func NewAuditor(logger *slog.Logger, db *database.Database) Auditor {
	return Auditor{logger: logger, db: db}
}

type LogEventParam struct {
	ActorID uuid.UUID
	Type    EventType
	Data    map[string]any
}

func (a *Auditor) LogEvent(ctx context.Context, params LogEventParam) error {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log event data: %w", err)
	}

	if _, err := a.db.CreateAuditLogEvent(ctx, database.CreateAuditLogEventParams{
		ActorID:   params.ActorID,
		EventType: string(params.Type),
		EventData: data,
	}); err != nil {
		return fmt.Errorf("failed to create audit log event: %w", err)
	}
	return nil
}
