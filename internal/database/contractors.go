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

type Contractor struct {
	ID           uuid.UUID
	Name         string
	Nickname     util.Optional[string]
	City         string
	CustomerType string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateContractorParams struct {
	Name         string
	Nickname     util.Optional[string]
	City         string
	CustomerType string
	Phone        string
}

func (db *Database) CreateContractor(ctx context.Context, params CreateContractorParams) (Contractor, error) {
	contractor := Contractor{
		ID:           uuid.New(),
		Name:         params.Name,
		Nickname:     params.Nickname,
		City:         params.City,
		CustomerType: params.CustomerType,
		Phone:        params.Phone,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_contractor (id, name, nickname, city, customer_type, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		contractor.ID, contractor.Name, contractor.Nickname, contractor.City, contractor.CustomerType, contractor.Phone, contractor.CreatedAt, contractor.UpdatedAt); err != nil {
		return contractor, fmt.Errorf("database: failed to insert contractor (name=%s): %w", contractor.Name, err)
	}
	return contractor, nil
}

type ListContractorsParams struct {
	City         util.Optional[string]
	CustomerType util.Optional[string]
}

func (db *Database) ListContractors(ctx context.Context, params ListContractorsParams) ([]Contractor, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, name, nickname, city, customer_type, phone, created_at, updated_at FROM tbl_contractor WHERE 1=1`)
	var args []any
	argNum := 1

	if params.City.IsSet {
		query.WriteString(fmt.Sprintf(" AND city = $%d", argNum))
		args = append(args, params.City.Val)
		argNum++
	}
	if params.CustomerType.IsSet {
		query.WriteString(fmt.Sprintf(" AND customer_type = $%d", argNum))
		args = append(args, params.CustomerType.Val)
		argNum++
	}
	query.WriteString(" ORDER BY name ASC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list contractors: %w", err)
	}
	defer rows.Close()

	var contractors []Contractor
	for rows.Next() {
		var c Contractor
		if err := rows.Scan(&c.ID, &c.Name, &c.Nickname, &c.City, &c.CustomerType, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan contractor: %w", err)
		}
		contractors = append(contractors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate contractors: %w", err)
	}
	return contractors, nil
}

func (db *Database) GetContractorByID(ctx context.Context, id uuid.UUID) (Contractor, error) {
	var c Contractor
	err := db.Pool.QueryRow(ctx, `SELECT id, name, nickname, city, customer_type, phone, created_at, updated_at FROM tbl_contractor WHERE id = $1`, id).Scan(
		&c.ID, &c.Name, &c.Nickname, &c.City, &c.CustomerType, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, ErrContractorNotFound
		}
		return c, fmt.Errorf("database: failed to scan contractor: %w", err)
	}
	return c, nil
}

type UpdateContractorParams struct {
	Name         util.Optional[string]
	Nickname     util.Optional[string]
	City         util.Optional[string]
	CustomerType util.Optional[string]
	Phone        util.Optional[string]
}

func (db *Database) UpdateContractorByID(ctx context.Context, id uuid.UUID, params UpdateContractorParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_contractor SET updated_at = now()`)
	var args []any
	argNum := 1

	if params.Name.IsSet {
		query.WriteString(fmt.Sprintf(", name = $%d", argNum))
		args = append(args, params.Name.Val)
		argNum++
	}
	if params.Nickname.IsSet {
		query.WriteString(fmt.Sprintf(", nickname = $%d", argNum))
		args = append(args, params.Nickname.Val)
		argNum++
	}
	if params.City.IsSet {
		query.WriteString(fmt.Sprintf(", city = $%d", argNum))
		args = append(args, params.City.Val)
		argNum++
	}
	if params.CustomerType.IsSet {
		query.WriteString(fmt.Sprintf(", customer_type = $%d", argNum))
		args = append(args, params.CustomerType.Val)
		argNum++
	}
	if params.Phone.IsSet {
		query.WriteString(fmt.Sprintf(", phone = $%d", argNum))
		args = append(args, params.Phone.Val)
		argNum++
	}

	query.WriteString(fmt.Sprintf(" WHERE id = $%d", argNum))
	args = append(args, id)

	tag, err := db.Pool.Exec(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("database: failed to update contractor (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContractorNotFound
	}
	return nil
}

func (db *Database) DeleteContractorByID(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tbl_contractor WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("database: failed to delete contractor (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContractorNotFound
	}
	return nil
}
