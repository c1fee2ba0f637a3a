package web

import (
	"errors"
	"strings"

	"opsdesk/internal/account"
	"opsdesk/internal/audit"
	"opsdesk/internal/middleware"
	"opsdesk/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := h.accounts.Login(c.Context(), account.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrTooManyAttempts):
			return errorResponse(c, fiber.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		case errors.Is(err, account.ErrInvalidCredentials):
			// Generic message to prevent email enumeration.
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, account.ErrAccountDisabled):
			return errorResponse(c, fiber.StatusForbidden, "Account is disabled")
		default:
			h.logger.Error("Failed to login", "email", req.Email, "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}

	sess, err := h.sessionStore.Get(c)
	if err != nil {
		h.logger.Error("Failed to get session", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to create session")
	}
	sess.Set("user_id", user.ID.String())
	if err := sess.Save(); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to save session")
	}

	h.logger.Info("User logged in", "email", req.Email, "user_id", user.ID, "ip", c.IP())

	return c.JSON(fiber.Map{"user": userResponse(user)})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessionStore.Get(c)
	if err != nil {
		h.logger.Error("Failed to get session", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Session error")
	}

	actorID := middleware.UserID(c)
	if err := sess.Destroy(); err != nil {
		h.logger.Error("Failed to destroy session", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to logout")
	}

	if err := h.auditor.LogEvent(c.Context(), audit.LogEventParam{
		ActorID: actorID,
		Type:    audit.EventTypeUserLogout,
	}); err != nil {
		h.logger.Warn("failed to audit logout", "user", actorID, "error", err)
	}

	return c.JSON(fiber.Map{"status": "logged_out"})
}

// Me returns the authenticated user, including the page tokens the
// frontend uses to build the navigation.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), middleware.UserID(c))
	if err != nil {
		h.logger.Error("Failed to load current user", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"user": userResponse(user)})
}
