package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"opsdesk/internal/util"

	"github.com/google/uuid"
)

type AuditLogEvent struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	EventType string
	EventData json.RawMessage
	CreatedAt time.Time
}

type CreateAuditLogEventParams struct {
	ActorID   uuid.UUID
	EventType string
	EventData json.RawMessage
}

func (db *Database) CreateAuditLogEvent(ctx context.Context, params CreateAuditLogEventParams) (AuditLogEvent, error) {
	event := AuditLogEvent{
		ID:        uuid.New(),
		ActorID:   params.ActorID,
		EventType: params.EventType,
		EventData: params.EventData,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_audit_log_event (id, actor_id, event_type, event_data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.ActorID, event.EventType, event.EventData, event.CreatedAt); err != nil {
		return event, fmt.Errorf("database: failed to insert audit log event (type=%s): %w", event.EventType, err)
	}
	return event, nil
}

type ListAuditLogEventsParams struct {
	ActorID   util.Optional[uuid.UUID]
	EventType util.Optional[string]
	Limit     int
}

func (db *Database) ListAuditLogEvents(ctx context.Context, params ListAuditLogEventsParams) ([]AuditLogEvent, error) {
	query := `SELECT id, actor_id, event_type, event_data, created_at FROM tbl_audit_log_event WHERE 1=1`
	var args []any
	argNum := 1

	if params.ActorID.IsSet {
		query += fmt.Sprintf(" AND actor_id = $%d", argNum)
		args = append(args, params.ActorID.Val)
		argNum++
	}
	if params.EventType.IsSet {
		query += fmt.Sprintf(" AND event_type = $%d", argNum)
		args = append(args, params.EventType.Val)
		argNum++
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list audit log events: %w", err)
	}
	defer rows.Close()

	var events []AuditLogEvent
	for rows.Next() {
		var event AuditLogEvent
		if err := rows.Scan(&event.ID, &event.ActorID, &event.EventType, &event.EventData, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan audit log event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate audit log events: %w", err)
	}
	return events, nil
}
