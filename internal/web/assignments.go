package web

import (
	"errors"

	"opsdesk/internal/assignment"
	"opsdesk/internal/audit"
	"opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type assignmentRequest struct {
	UserID       uuid.UUID `json:"user_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
}

// GrantAssignment links a contractor to a user. A duplicate grant is
// reported as already_assigned without failing the request.
func (h *Handler) GrantAssignment(c *fiber.Ctx) error {
	var req assignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == uuid.Nil || req.ContractorID == uuid.Nil {
		return errorResponse(c, fiber.StatusBadRequest, "user_id and contractor_id are required")
	}

	outcome, err := h.assignments.Grant(c.Context(), req.UserID, req.ContractorID)
	if err != nil {
		return h.assignmentError(c, "grant", req, err)
	}

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: middleware.UserID(c),
		Type:    audit.EventTypeAssignmentGrant,
		Data: map[string]any{
			"user":       req.UserID.String(),
			"contractor": req.ContractorID.String(),
			"outcome":    outcome.String(),
		},
	}); err != nil {
		h.logger.Warn("failed to audit assignment grant", "user", req.UserID, "error", err)
	}

	status := fiber.StatusCreated
	if outcome == assignment.OutcomeAlreadyAssigned {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"outcome": outcome.String()})
}

func (h *Handler) RevokeAssignment(c *fiber.Ctx) error {
	var req assignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == uuid.Nil || req.ContractorID == uuid.Nil {
		return errorResponse(c, fiber.StatusBadRequest, "user_id and contractor_id are required")
	}

	outcome, err := h.assignments.Revoke(c.Context(), req.UserID, req.ContractorID)
	if err != nil {
		return h.assignmentError(c, "revoke", req, err)
	}

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: middleware.UserID(c),
		Type:    audit.EventTypeAssignmentRevoke,
		Data: map[string]any{
			"user":       req.UserID.String(),
			"contractor": req.ContractorID.String(),
		},
	}); err != nil {
		h.logger.Warn("failed to audit assignment revoke", "user", req.UserID, "error", err)
	}

	return c.JSON(fiber.Map{"outcome": outcome.String()})
}

func (h *Handler) assignmentError(c *fiber.Ctx, op string, req assignmentRequest, err error) error {
	switch {
	case errors.Is(err, assignment.ErrBusy):
		return errorResponse(c, fiber.StatusConflict, "Another assignment change is in progress")
	case errors.Is(err, assignment.ErrTimeout):
		h.logger.Error("Assignment operation timed out", "op", op, "user", req.UserID, "contractor", req.ContractorID)
		return errorResponse(c, fiber.StatusGatewayTimeout, "Assignment change timed out and was rolled back")
	default:
		h.logger.Error("Assignment operation failed", "op", op, "user", req.UserID, "contractor", req.ContractorID, "error", err)
		return errorResponse(c, fiber.StatusBadGateway, "Assignment change failed and was rolled back")
	}
}

// ListAssignments returns the persisted assignment rows.
func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	assignments, err := h.db.ListAssignments(c.Context())
	if err != nil {
		h.logger.Error("Failed to list assignments", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	items := make([]fiber.Map, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, assignmentResponse(a))
	}
	return c.JSON(fiber.Map{"items": items})
}

// ListUserAssignments returns the in-memory contractor set for one user,
// refreshed from the database first.
func (h *Handler) ListUserAssignments(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	if err := h.assignments.LoadForUser(c.Context(), userID); err != nil {
		h.logger.Error("Failed to load assignments", "user", userID, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(fiber.Map{
		"user_id":     userID,
		"contractors": h.assignments.Contractors(userID),
	})
}
