package web

import (
	"opsdesk/internal/database"
	"opsdesk/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) DashboardSummary(c *fiber.Ctx) error {
	summary, err := h.dashboards.Summary(c.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(summary)
}

// ListAuditLog supports actor_id and event_type filters; limit defaults
// to 100.
func (h *Handler) ListAuditLog(c *fiber.Ctx) error {
	params := database.ListAuditLogEventsParams{
		Limit: c.QueryInt("limit", 100),
	}
	if v := c.Query("actor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid actor_id")
		}
		params.ActorID = util.Some(id)
	}
	if v := c.Query("event_type"); v != "" {
		params.EventType = util.Some(v)
	}

	events, err := h.db.ListAuditLogEvents(c.Context(), params)
	if err != nil {
		h.logger.Error("Failed to list audit log", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	items := make([]fiber.Map, 0, len(events))
	for _, e := range events {
		items = append(items, fiber.Map{
			"id":         e.ID,
			"actor_id":   e.ActorID,
			"event_type": e.EventType,
			"data":       e.EventData,
			"created_at": e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
	}
	return c.JSON(fiber.Map{"status": "healthy"})
}
