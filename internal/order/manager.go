// Package order manages customer orders: creation with a generated
// business id and a fixed status lifecycle.
package order

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
	StatusNew        Status = "new"
	StatusConfirmed  Status = "confirmed"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// transitions holds the allowed status moves. Cancellation is allowed
// from any state before delivery.
var transitions = map[Status][]Status{
	StatusNew:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	ErrInvalidStatus     = errors.New("order: invalid status")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	CountOrders(ctx context.Context, city util.Optional[string]) (int, error)
	CreateOrder(ctx context.Context, params database.CreateOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, params database.ListOrdersParams) ([]database.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderByID(ctx context.Context, id uuid.UUID, params database.UpdateOrderParams) error
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
	CustomerName string
	City         string
	AmountPaise  int64
	CreatedBy    uuid.UUID
}

// Create generates the order's business id from the city's current order
// count and inserts the record. Same sequence-number race window as lead
// creation.
func (m *Manager) Create(ctx context.Context, params CreateParams) (database.Order, error) {
	var order database.Order

	creator, err := m.store.GetUserByID(ctx, params.CreatedBy)
	if err != nil {
		return order, fmt.Errorf("failed to resolve creating user: %w", err)
	}

	count, err := m.store.CountOrders(ctx, util.Some(params.City))
	if err != nil {
		return order, fmt.Errorf("failed to count orders for city %q: %w", params.City, err)
	}

	orderID, err := ident.Generate(ident.PrefixOrder, time.Now().UTC(), params.City, ident.Creator{
		ID:   creator.ID.String(),
		Name: creator.Name,
	}, count)
	if err != nil {
		return order, fmt.Errorf("failed to generate order id: %w", err)
	}

	order, err = m.store.CreateOrder(ctx, database.CreateOrderParams{
		OrderID:      orderID,
		CustomerName: params.CustomerName,
		City:         params.City,
		AmountPaise:  params.AmountPaise,
		Status:       string(StatusNew),
		CreatedBy:    params.CreatedBy,
	})
	if err != nil {
		return order, fmt.Errorf("failed to create order: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: params.CreatedBy,
		Type:    audit.EventTypeOrderCreate,
		Data:    map[string]any{"order_id": order.OrderID, "city": order.City, "amount_paise": order.AmountPaise},
	}); err != nil {
		m.logger.Warn("failed to audit order creation", "order_id", order.OrderID, "error", err)
	}

	return order, nil
}

type ListParams struct {
	City   util.Optional[string]
	Status util.Optional[string]
}

func (m *Manager) List(ctx context.Context, params ListParams) ([]database.Order, error) {
	orders, err := m.store.ListOrders(ctx, database.ListOrdersParams{
		City:   params.City,
		Status: params.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.store.GetOrderByID(ctx, id)
}

// UpdateStatus enforces the lifecycle: the current status must allow the
// requested transition.
func (m *Manager) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, next Status) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	order, err := m.store.GetOrderByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}

	current := Status(order.Status)
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}

	if err := m.store.UpdateOrderByID(ctx, id, database.UpdateOrderParams{
		Status: util.Some(string(next)),
	}); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeOrderStatusChange,
		Data:    map[string]any{"order": id.String(), "from": string(current), "to": string(next)},
	}); err != nil {
		m.logger.Warn("failed to audit order status change", "order", id, "error", err)
	}
	return nil
}

// Attach stores the public URL of an uploaded file on the order.
func (m *Manager) Attach(ctx context.Context, actorID, id uuid.UUID, publicURL string) error {
	if err := m.store.UpdateOrderByID(ctx, id, database.UpdateOrderParams{
		AttachmentURL: util.Some(publicURL),
	}); err != nil {
		return fmt.Errorf("failed to attach file to order: %w", err)
	}

	if err := m.auditor.LogEvent(ctx, audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeAttachmentUpload,
		Data:    map[string]any{"order": id.String(), "url": publicURL},
	}); err != nil {
		m.logger.Warn("failed to audit attachment", "order", id, "error", err)
	}
	return nil
}
