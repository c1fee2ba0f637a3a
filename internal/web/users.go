package web

import (
	"errors"

	"opsdesk/internal/database"
	"opsdesk/internal/directory"
	"opsdesk/internal/middleware"
	"opsdesk/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
	Role     string `json:"role" validate:"required"`
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Name, valid email and a strong password are required")
	}

	created, err := h.users.Create(c.Context(), user.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     user.Role(req.Role),
		ActorID:  middleware.UserID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidRole):
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role")
		case errors.Is(err, user.ErrEmailAlreadyInUse):
			return errorResponse(c, fiber.StatusConflict, "Email already in use")
		default:
			h.logger.Error("Failed to create user", "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": userResponse(created)})
}

// ListUsers supports q (name or email substring) and role filters.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}

	users = directory.FilterUsers(users, c.Query("q"), c.Query("role"))

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, userResponse(u))
	}
	return c.JSON(fiber.Map{"items": items})
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	u, err := h.users.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Failed to get user", "user", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"user": userResponse(u)})
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) ChangeUserRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req changeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.users.ChangeRole(c.Context(), middleware.UserID(c), id, user.Role(req.Role)); err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidRole):
			return errorResponse(c, fiber.StatusBadRequest, "Unknown role")
		case errors.Is(err, database.ErrUserNotFound):
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		default:
			h.logger.Error("Failed to change role", "user", id, "error", err)
			return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
		}
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

type setPagesRequest struct {
	Pages []string `json:"pages" validate:"required"`
}

func (h *Handler) SetUserPages(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req setPagesRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.users.SetPages(c.Context(), middleware.UserID(c), id, req.Pages); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Failed to set pages", "user", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,password_strength"`
}

func (h *Handler) ResetUserPassword(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Validate(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "A strong password is required")
	}

	if err := h.users.ResetPassword(c.Context(), middleware.UserID(c), id, req.Password); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Failed to reset password", "user", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// DeactivateUser disables login while keeping the user's records for
// history and audit trails.
func (h *Handler) DeactivateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid user id")
	}

	if id == middleware.UserID(c) {
		return errorResponse(c, fiber.StatusBadRequest, "Cannot deactivate your own account")
	}

	if err := h.users.Deactivate(c.Context(), middleware.UserID(c), id); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "User not found")
		}
		h.logger.Error("Failed to deactivate user", "user", id, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"status": "deactivated"})
}
