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

type Order struct {
	ID            uuid.UUID
	OrderID       string // generated business id, e.g. O/0325/MUM/JS-01
	CustomerName  string
	City          string
	AmountPaise   int64
	Status        string
	AttachmentURL util.Optional[string]
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateOrderParams struct {
	OrderID      string
	CustomerName string
	City         string
	AmountPaise  int64
	Status       string
	CreatedBy    uuid.UUID
}

func (db *Database) CreateOrder(ctx context.Context, params CreateOrderParams) (Order, error) {
	order := Order{
		ID:           uuid.New(),
		OrderID:      params.OrderID,
		CustomerName: params.CustomerName,
		City:         params.City,
		AmountPaise:  params.AmountPaise,
		Status:       params.Status,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_order (id, order_id, customer_name, city, amount_paise, status, attachment_url, created_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.OrderID, order.CustomerName, order.City, order.AmountPaise, order.Status, order.AttachmentURL, order.CreatedBy, order.CreatedAt, order.UpdatedAt); err != nil {
		return order, fmt.Errorf("database: failed to insert order (order_id=%s): %w", order.OrderID, err)
	}
	return order, nil
}

type ListOrdersParams struct {
	City   util.Optional[string]
	Status util.Optional[string]
}

func (db *Database) ListOrders(ctx context.Context, params ListOrdersParams) ([]Order, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, order_id, customer_name, city, amount_paise, status, attachment_url, created_by, created_at, updated_at FROM tbl_order WHERE 1=1`)
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
	query.WriteString(" ORDER BY created_at DESC")

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.OrderID, &order.CustomerName, &order.City, &order.AmountPaise, &order.Status, &order.AttachmentURL, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate orders: %w", err)
	}
	return orders, nil
}

// CountOrders feeds the sequence number of generated order ids; same
// read-then-write window as CountLeads.
func (db *Database) CountOrders(ctx context.Context, city util.Optional[string]) (int, error) {
	var query strings.Builder
	query.WriteString(`SELECT COUNT(*) FROM tbl_order WHERE 1=1`)
	var args []any

	if city.IsSet {
		query.WriteString(" AND city = $1")
		args = append(args, city.Val)
	}

	var count int
	if err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("database: failed to count orders: %w", err)
	}
	return count, nil
}

func (db *Database) GetOrderByID(ctx context.Context, id uuid.UUID) (Order, error) {
	var order Order
	err := db.Pool.QueryRow(ctx, `SELECT id, order_id, customer_name, city, amount_paise, status, attachment_url, created_by, created_at, updated_at FROM tbl_order WHERE id = $1`, id).Scan(
		&order.ID, &order.OrderID, &order.CustomerName, &order.City, &order.AmountPaise, &order.Status, &order.AttachmentURL, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order, ErrOrderNotFound
		}
		return order, fmt.Errorf("database: failed to scan order: %w", err)
	}
	return order, nil
}

type UpdateOrderParams struct {
	Status        util.Optional[string]
	AmountPaise   util.Optional[int64]
	AttachmentURL util.Optional[string]
}

func (db *Database) UpdateOrderByID(ctx context.Context, id uuid.UUID, params UpdateOrderParams) error {
	var query strings.Builder
	query.WriteString(`UPDATE tbl_order SET updated_at = now()`)
	var args []any
	argNum := 1

	if params.Status.IsSet {
		query.WriteString(fmt.Sprintf(", status = $%d", argNum))
		args = append(args, params.Status.Val)
		argNum++
	}
	if params.AmountPaise.IsSet {
		query.WriteString(fmt.Sprintf(", amount_paise = $%d", argNum))
		args = append(args, params.AmountPaise.Val)
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
		return fmt.Errorf("database: failed to update order (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
