package web

import (
	"errors"

	"opsdesk/internal/database"
	"opsdesk/internal/lead"
	"opsdesk/internal/middleware"
	"opsdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createLeadRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required,in_phone"`
	City       string `json:"city" validate:"required"`
	Source     string `json:"source"`
	AssignedTo string `json:"assigned_to"`
}

func (h *Handler) CreateLead(c *fiber.Ctx) error {
	var req createLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Name, city and a valid phone number are required")
	}

	assignedTo := util.None[uuid.UUID]()
	if req.AssignedTo != "" {
		id, err := uuid.Parse(req.AssignedTo)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid assigned_to id")
		}
		assignedTo = util.Some(id)
	}

	created, err := h.leads.Create(c.Context(), lead.CreateParams{
		Name:       req.Name,
		Phone:      req.Phone,
		City:       req.City,
		Source:     req.Source,
		AssignedTo: assignedTo,
		CreatedBy:  middleware.UserID(c),
	})
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusBadRequest, "Unknown creator")
		}
		h.logger.Error("Failed to create lead", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lead": leadResponse(created)})
}

// ListLeads supports city, status and assigned_to filters.
func (h *Handler) ListLeads(c *fiber.Ctx) error {
	params := lead.ListParams{}
	if v := c.Query("city"); v != "" {
		params.City = util.Some(v)
	}
	if v := c.Query("status"); v != "" {
		params.Status = util.Some(v)
	}
	if v := c.Query("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid assigned_to id")
		}
		params.AssignedTo = util.Some(id)
	}

	leads, err := h.leads.List(c.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list leads", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	items := make([]fiber.Map, 0, len(leads))
	for _, l := range leads {
		items = append(items, leadResponse(l))
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) GetLead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid lead id")
	}

	l, err := h.leads.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrLeadNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Lead not found")
		}
		h.logger.Error("Failed to get lead", "lead", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"lead": leadResponse(l)})
}

type updateLeadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) UpdateLeadStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid lead id")
	}

	var req updateLeadStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.leads.UpdateStatus(c.Context(), middleware.UserID(c), id, lead.Status(req.Status)); err != nil {
		switch {
		case errors.Is(err, lead.ErrInvalidStatus):
			return errorResponse(c, fiber.StatusBadRequest, "Unknown status")
		case errors.Is(err, database.ErrLeadNotFound):
			return errorResponse(c, fiber.StatusNotFound, "Lead not found")
		default:
			h.logger.Error("Failed to update lead status", "lead", id, "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

type reassignLeadRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to"`
}

func (h *Handler) ReassignLead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid lead id")
	}

	var req reassignLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.AssignedTo == uuid.Nil {
		return errorResponse(c, fiber.StatusBadRequest, "assigned_to is required")
	}

	if err := h.leads.Reassign(c.Context(), middleware.UserID(c), id, req.AssignedTo); err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotFound):
			return errorResponse(c, fiber.StatusBadRequest, "Unknown assignee")
		case errors.Is(err, database.ErrLeadNotFound):
			return errorResponse(c, fiber.StatusNotFound, "Lead not found")
		default:
			h.logger.Error("Failed to reassign lead", "lead", id, "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *Handler) DeleteLead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid lead id")
	}

	if err := h.leads.Delete(c.Context(), id); err != nil {
		if errors.Is(err, database.ErrLeadNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Lead not found")
		}
		h.logger.Error("Failed to delete lead", "lead", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// UploadLeadAttachment stores the file in S3 and records its public URL
// on the lead.
func (h *Handler) UploadLeadAttachment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid lead id")
	}

	url, err := h.storeAttachment(c)
	if err != nil {
		return h.attachmentError(c, err)
	}

	if err := h.leads.Attach(c.Context(), middleware.UserID(c), id, url); err != nil {
		if errors.Is(err, database.ErrLeadNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Lead not found")
		}
		h.logger.Error("Failed to attach file to lead", "lead", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"attachment_url": url})
}
