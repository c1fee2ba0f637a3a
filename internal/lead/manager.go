// Package lead manages sales leads: creation with a generated business
// id, status progression and reassignment between users.
package lead

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/ident"
	"opsdesk/internal/util"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusDropped   Status = "dropped"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusDropped:
		return true
	default:
		return false
	}
}

var ErrInvalidStatus = errors.New("lead: invalid status")

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	CountLeads(ctx context.Context, city util.Optional[string]) (int, error)
	CreateLead(ctx context.Context, params database.CreateLeadParams) (database.Lead, error)
	ListLeads(ctx context.Context, params database.ListLeadsParams) ([]database.Lead, error)
	GetLeadByID(ctx context.Context, id uuid.UUID) (database.Lead, error)
	UpdateLeadByID(ctx context.Context, id uuid.UUID, params database.UpdateLeadParams) error
	DeleteLeadByID(ctx context.Context, id uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
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
	Name       string
	Phone      string
	City       string
	Source     string
	AssignedTo util.Optional[uuid.UUID]
	CreatedBy  uuid.UUID
}

// Create generates the lead's business id from the city's current lead
// count and inserts the record. The count and the insert are separate
// statements; concurrent creations in the same city can collide on the
// sequence number.
func (m *Manager) Create(ctx context.Context, params CreateParams) (database.Lead, error) {
	var lead database.Lead

	creator, err := m.store.GetUserByID(ctx, params.CreatedBy)
	if err != nil {
		return lead, fmt.Errorf("failed to resolve creating user: %w", err)
	}

	count, err := m.store.CountLeads(ctx, util.Some(params.City))
	if err != nil {
		return lead, fmt.Errorf("failed to count leads for city %q: %w", params.City, err)
	}

	leadID, err := ident.Generate(ident.PrefixLead, time.Now().UTC(), params.City, ident.Creator{
		ID:   creator.ID.String(),
		Name: creator.Name,
	}, count)
	if err != nil {
		return lead, fmt.Errorf("failed to generate lead id: %w", err)
	}

	lead, err = m.store.CreateLead(ctx, database.CreateLeadParams{
		LeadID:     leadID,
		Name:       params.Name,
		Phone:      params.Phone,
		City:       params.City,
		Source:     params.Source,
		Status:     string(StatusNew),
		AssignedTo: params.AssignedTo,
		CreatedBy:  params.CreatedBy,
	})
	if err != nil {
		return lead, fmt.Errorf("failed to create lead: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: params.CreatedBy,
		Type:    audit.EventTypeLeadCreate,
		Data:    map[string]any{"lead_id": lead.LeadID, "city": lead.City},
	}); err != nil {
		m.logger.Warn("failed to audit lead creation", "lead_id", lead.LeadID, "error", err)
	}

	return lead, nil
}

type ListParams struct {
	City       util.Optional[string]
	Status     util.Optional[string]
	AssignedTo util.Optional[uuid.UUID]
}

func (m *Manager) List(ctx context.Context, params ListParams) ([]database.Lead, error) {
	leads, err := m.store.ListLeads(ctx, database.ListLeadsParams{
		City:       params.City,
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.Lead, error) {
	return m.store.GetLeadByID(ctx, id)
}

func (m *Manager) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := m.store.UpdateLeadByID(ctx, id, database.UpdateLeadParams{
		Status: util.Some(string(status)),
	}); err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeLeadUpdate,
		Data:    map[string]any{"lead": id.String(), "status": string(status)},
	}); err != nil {
		m.logger.Warn("failed to audit lead update", "lead", id, "error", err)
	}
	return nil
}

func (m *Manager) Reassign(ctx context.Context, actorID, id, assigneeID uuid.UUID) error {
	if _, err := m.store.GetUserByID(ctx, assigneeID); err != nil {
		return fmt.Errorf("failed to resolve assignee: %w", err)
	}

	if err := m.store.UpdateLeadByID(ctx, id, database.UpdateLeadParams{
		AssignedTo: util.Some(assigneeID),
	}); err != nil {
		return fmt.Errorf("failed to reassign lead: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeLeadUpdate,
		Data:    map[string]any{"lead": id.String(), "assigned_to": assigneeID.String()},
	}); err != nil {
		m.logger.Warn("failed to audit lead reassignment", "lead", id, "error", err)
	}
	return nil
}

// Attach stores the public URL of an uploaded file on the lead.
func (m *Manager) Attach(ctx context.Context, actorID, id uuid.UUID, publicURL string) error {
	if err := m.store.UpdateLeadByID(ctx, id, database.UpdateLeadParams{
		AttachmentURL: util.Some(publicURL),
	}); err != nil {
		return fmt.Errorf("failed to attach file to lead: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeAttachmentUpload,
		Data:    map[string]any{"lead": id.String(), "url": publicURL},
	}); err != nil {
		m.logger.Warn("failed to audit attachment", "lead", id, "error", err)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.store.DeleteLeadByID(ctx, id)
}
