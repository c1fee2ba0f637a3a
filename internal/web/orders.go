package web

import (
	"errors"

	"opsdesk/internal/database"
	"opsdesk/internal/middleware"
	"opsdesk/internal/order"
	"opsdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createOrderRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	City         string `json:"city" validate:"required"`
	AmountPaise  int64  `json:"amount_paise" validate:"required,gt=0"`
}

func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Customer name, city and a positive amount are required")
	}

	created, err := h.orders.Create(c.Context(), order.CreateParams{
		CustomerName: req.CustomerName,
		City:         req.City,
		AmountPaise:  req.AmountPaise,
		CreatedBy:    middleware.UserID(c),
	})
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown creator")
		}
		h.logger.Error("Failed to create order", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": orderResponse(created)})
}

// ListOrders supports city and status filters.
func (h *Handler) ListOrders(c *fiber.Ctx) error {
	params := order.ListParams{}
	if v := c.Query("city"); v != "" {
		params.City = util.Some(v)
	}
	if v := c.Query("status"); v != "" {
		params.Status = util.Some(v)
	}

	orders, err := h.orders.List(c.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list orders", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	items := make([]fiber.Map, 0, len(orders))
	for _, o := range orders {
		items = append(items, orderResponse(o))
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid order id")
	}

	o, err := h.orders.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Order not found")
		}
		h.logger.Error("Failed to get order", "order", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"order": orderResponse(o)})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus moves the order along its lifecycle. Skipping steps
// is rejected.
func (h *Handler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid order id")
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.orders.UpdateStatus(c.Context(), middleware.UserID(c), id, order.Status(req.Status)); err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status")
		case errors.Is(err, order.ErrInvalidTransition):
			return errorResponse(c, fiber.StatusConflict, "Status change not allowed from the current state")
		case errors.Is(err, database.ErrOrderNotFound):
			return errorResponse(c, fiber.StatusNotFound, "Order not found")
		default:
			h.logger.Error("Failed to update order status", "order", id, "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *Handler) UploadOrderAttachment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid order id")
	}

	url, err := h.storeAttachment(c)
	if err != nil {
		return h.attachmentError(c, err)
	}

	if err := h.orders.Attach(c.Context(), middleware.UserID(c), id, url); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Order not found")
		}
		h.logger.Error("Failed to attach file to order", "order", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attachment_url": url})
}
