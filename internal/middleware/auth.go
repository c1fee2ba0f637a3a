package middleware

import (
	"context"
	"log/slog"

	"opsdesk/internal/database"
	"opsdesk/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// UserStore resolves the authenticated user for page-access checks.
// *database.Database satisfies it.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

// AuthenticatedSession rejects requests without a logged-in session and
// exposes the user id through c.Locals("user_id").
func AuthenticatedSession(sessionStore *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessionStore.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Session error",
			})
		}

		raw, ok := sess.Get("user_id").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		c.Locals("user_id", userID)

		return c.Next()
	}
}

// RequirePage allows the request only when the user's page tokens
// include the given page. Runs after AuthenticatedSession.
func RequirePage(logger *slog.Logger, store UserStore, page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uuid.UUID)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		u, err := store.GetUserByID(c.Context(), userID)
		if err != nil {
			logger.Error("Failed to load user for page check", "user", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		if !u.IsActive || !user.CanAccess(u, page) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// UserID returns the authenticated user id set by AuthenticatedSession.
func UserID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
