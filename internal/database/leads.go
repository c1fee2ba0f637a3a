package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdesk/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Lead struct {
	ID            uuid.UUID
	LeadID        string // generated business id, e.g. L/0325/MUM/JS-01
	Name          string
	Phone         string
	City          string
	Source        string
	Status        string
	AssignedTo    util.Optional[uuid.UUID]
	AttachmentURL util.Optional[string]
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateLeadParams struct {
	LeadID     string
	Name       string
	Phone      string
	City       string
	Source     string
	Status     string
	AssignedTo util.Optional[uuid.UUID]
	CreatedBy  uuid.UUID
}

func (db *Database) CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead := Lead{
		ID:         uuid.New(),
		LeadID:     params.LeadID,
		Name:       params.Name,
		Phone:      params.Phone,
		City:       params.City,
		Source:     params.Source,
		Status:     params.Status,
		AssignedTo: params.AssignedTo,
		CreatedBy:  params.CreatedBy,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_lead (id, lead_id, name, phone, city, source, status, assigned_to, attachment_url, created_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lead.ID, lead.LeadID, lead.Name, lead.Phone, lead.City, lead.Source, lead.Status, lead.AssignedTo, lead.AttachmentURL, lead.CreatedBy, lead.CreatedAt, lead.UpdatedAt); err != nil {
		return lead, fmt.Errorf("database: failed to insert lead (lead_id=%s): %w", lead.LeadID, err)
	}
	return lead, nil
}

type ListLeadsParams struct {
	City       util.Optional[string]
	Status     util.Optional[string]
	AssignedTo util.Optional[uuid.UUID]
}

func (db *Database) ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, lead_id, name, phone, city, source, status, assigned_to, attachment_url, created_by, created_at, updated_at FROM tbl_lead WHERE 1=1`)
	var args []any
	argNum := 1

	if params.City.IsSet {
		query.WriteString(fmt.Sprintf(" AND city = $%d", argNum))
		args = append(args, params.City.Val)
		argNum++
	}
	if params.Status.IsSet {
		query.WriteString(fmt.Sprintf(" AND status = $%d", argNum))
		args = append(args, params.Status.Val)
		argNum++
	}
	if params.AssignedTo.IsSet {
		query.WriteString(fmt.Sprintf(" AND assigned_to = $%d", argNum))
		args = append(args, params.AssignedTo.Val)
		argNum++
	}
	query.WriteString(" ORDER BY created_at DESC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.ID, &lead.LeadID, &lead.Name, &lead.Phone, &lead.City, &lead.Source, &lead.Status, &lead.AssignedTo, &lead.AttachmentURL, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate leads: %w", err)
	}
	return leads, nil
}

// CountLeads feeds the sequence number of generated lead ids. The count
// and the subsequent insert are two separate statements, so concurrent
// creations for the same city can observe the same count.
func (db *Database) CountLeads(ctx context.Context, city util.Optional[string]) (int, error) {
	var query strings.Builder
	query.WriteString(`SELECT COUNT(*) FROM tbl_lead WHERE 1=1`)
	var args []any

	if city.IsSet {
		query.WriteString(" AND city = $1")
		args = append(args, city.Val)
	}

	var count int
	if err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("database: failed to count leads: %w", err)
	}
	return count, nil
}

func (db *Database) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := db.Pool.QueryRow(ctx, `SELECT id, lead_id, name, phone, city, source, status, assigned_to, attachment_url, created_by, created_at, updated_at FROM tbl_lead WHERE id = $1`, id).Scan(
		&lead.ID, &lead.LeadID, &lead.Name, &lead.Phone, &lead.City, &lead.Source, &lead.Status, &lead.AssignedTo, &lead.AttachmentURL, &lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lead, ErrLeadNotFound
		}
		return lead, fmt.Errorf("database: failed to scan lead: %w", err)
	}
	return lead, nil
}

type UpdateLeadParams struct {
	Name          util.Optional[string]
	Phone         util.Optional[string]
	Status        util.Optional[string]
	AssignedTo    util.Optional[uuid.UUID]
	AttachmentURL util.Optional[string]
}

func (db *Database) UpdateLeadByID(ctx context.Context, id uuid.UUID, params UpdateLeadParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_lead SET updated_at = now()`)
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf(", name = $%d", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Phone.IsSet {
		query.WriteString(fmt.Sprintf(", phone = $%d", argNum))
		args = append(args, params.Phone.Val)
		argNum++
	}
	if params.Status.IsSet {
		query.WriteString(fmt.Sprintf(", status = $%d", argNum))
		args = append(args, params.Status.Val)
		argNum++
	}
	if params.AssignedTo.IsSet {
		query.WriteString(fmt.Sprintf(", assigned_to = $%d", argNum))
		args = append(args, params.AssignedTo.Val)
		argNum++
	}
	if params.AttachmentURL.IsSet {
		query.WriteString(fmt.Sprintf(", attachment_url = $%d", argNum))
		args = append(args, params.AttachmentURL.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf(" WHERE id = $%d", argNum))
	args = append(args, id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update lead (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (db *Database) DeleteLeadByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_lead WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete lead (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
