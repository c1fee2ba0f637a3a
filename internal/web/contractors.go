package web

import (
	"errors"

	"opsdesk/internal/audit"
	"opsdesk/internal/database"
	"opsdesk/internal/directory"
	"opsdesk/internal/middleware"
	"opsdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createContractorRequest struct {
	Name         string `json:"name" validate:"required"`
	Nickname     string `json:"nickname"`
	City         string `json:"city" validate:"required"`
	CustomerType string `json:"customer_type" validate:"required"`
	Phone        string `json:"phone" validate:"required,in_phone"`
}

func (h *Handler) CreateContractor(c *fiber.Ctx) error {
	var req createContractorRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Name, city, customer type and a valid phone number are required")
	}

	nickname := util.None[string]()
	if req.Nickname != "" {
		nickname = util.Some(req.Nickname)
	}

	contractor, err := h.db.CreateContractor(c.Context(), database.CreateContractorParams{
		Name:         req.Name,
		Nickname:     nickname,
		City:         req.City,
		CustomerType: req.CustomerType,
		Phone:        req.Phone,
	})
	if err != nil {
		h.logger.Error("Failed to create contractor", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: middleware.UserID(c),
		Type:    audit.EventTypeContractorCreate,
		Data:    map[string]any{"contractor": contractor.ID.String(), "name": contractor.Name},
	}); err != nil {
		h.logger.Warn("failed to audit contractor creation", "contractor", contractor.ID, "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"contractor": contractorResponse(contractor)})
}

// ListContractors supports q (name, nickname or city substring), city
// and customer_type filters.
func (h *Handler) ListContractors(c *fiber.Ctx) error {
	city := util.None[string]()
	if v := c.Query("city"); v != "" {
		city = util.Some(v)
	}

	contractors, err := h.db.ListContractors(c.Context(), database.ListContractorsParams{
		City: city,
	})
	if err != nil {
		h.logger.Error("Failed to list contractors", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	contractors = directory.FilterContractors(contractors, c.Query("q"), c.Query("customer_type"))

	items := make([]fiber.Map, 0, len(contractors))
	for _, contractor := range contractors {
		items = append(items, contractorResponse(contractor))
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) GetContractor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid contractor id")
	}

	contractor, err := h.db.GetContractorByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrContractorNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Contractor not found")
		}
		h.logger.Error("Failed to get contractor", "contractor", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"contractor": contractorResponse(contractor)})
}

type updateContractorRequest struct {
	Name         util.Optional[string] `json:"name"`
	Nickname     util.Optional[string] `json:"nickname"`
	City         util.Optional[string] `json:"city"`
	CustomerType util.Optional[string] `json:"customer_type"`
	Phone        util.Optional[string] `json:"phone"`
}

func (h *Handler) UpdateContractor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid contractor id")
	}

	var req updateContractorRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.db.UpdateContractorByID(c.Context(), id, database.UpdateContractorParams{
		Name:         req.Name,
		Nickname:     req.Nickname,
		City:         req.City,
		CustomerType: req.CustomerType,
		Phone:        req.Phone,
	}); err != nil {
		if errors.Is(err, database.ErrContractorNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Contractor not found")
		}
		h.logger.Error("Failed to update contractor", "contractor", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: middleware.UserID(c),
		Type:    audit.EventTypeContractorUpdate,
		Data:    map[string]any{"contractor": id.String()},
	}); err != nil {
		h.logger.Warn("failed to audit contractor update", "contractor", id, "error", err)
	}

	return c.JSON(fiber.Map{"status": "updated"})
}

func (h *Handler) DeleteContractor(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid contractor id")
	}

	if err := h.db.DeleteContractorByID(c.Context(), id); err != nil {
		if errors.Is(err, database.ErrContractorNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Contractor not found")
		}
		h.logger.Error("Failed to delete contractor", "contractor", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
