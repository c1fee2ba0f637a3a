package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"opsdesk/internal/database"
	"opsdesk/internal/middleware"
	"opsdesk/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[uuid.UUID]database.User
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	u, ok := s.users[id]
	if !ok {
		return database.User{}, database.ErrUserNotFound
	}
	return u, nil
}

func TestRequirePage(t *testing.T) {
	salesUser := database.User{
		ID:       uuid.New(),
		Role:     "sales",
		Pages:    []string{user.PageDashboard, user.PageLeads},
		IsActive: true,
	}
	disabledUser := salesUser
	disabledUser.ID = uuid.New()
	disabledUser.IsActive = false

	store := &fakeUserStore{users: map[uuid.UUID]database.User{
		salesUser.ID:    salesUser,
		disabledUser.ID: disabledUser,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		userID         uuid.UUID
		page           string
		expectedStatus int
	}{
		{name: "allowed_page", userID: salesUser.ID, page: user.PageLeads, expectedStatus: fiber.StatusOK},
		{name: "missing_page_token", userID: salesUser.ID, page: user.PageUsers, expectedStatus: fiber.StatusForbidden},
		{name: "deactivated_user", userID: disabledUser.ID, page: user.PageLeads, expectedStatus: fiber.StatusForbidden},
		{name: "no_session", userID: uuid.Nil, page: user.PageLeads, expectedStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/",
				func(c *fiber.Ctx) error {
					if tt.userID != uuid.Nil {
						c.Locals("user_id", tt.userID)
					}
					return c.Next()
				},
				middleware.RequirePage(logger, store, tt.page),
				func(c *fiber.Ctx) error {
					return c.SendStatus(fiber.StatusOK)
				},
			)

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
