package web

import (
	"opsdesk/internal/middleware"
	"opsdesk/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// RegisterRoutes mounts the API. Every route except login and health
// requires a session; page-level access follows the user's page tokens.
func (h *Handler) RegisterRoutes(app *fiber.App, sessionStore *session.Store) {
	app.Get("/health", h.Health)

	app.Post("/auth/login", h.Login)

	authed := app.Group("", middleware.AuthenticatedSession(sessionStore))
	authed.Post("/auth/logout", h.Logout)
	authed.Get("/auth/me", h.Me)

	api := authed.Group("/api")

	dashboardGroup := api.Group("/dashboard", middleware.RequirePage(h.logger, h.db, user.PageDashboard))
	dashboardGroup.Get("", h.DashboardSummary)

	ordersGroup := api.Group("/orders", middleware.RequirePage(h.logger, h.db, user.PageOrders))
	ordersGroup.Post("", h.CreateOrder)
	ordersGroup.Get("", h.ListOrders)
	ordersGroup.Get("/:id", h.GetOrder)
	ordersGroup.Patch("/:id/status", h.UpdateOrderStatus)
	ordersGroup.Post("/:id/attachment", h.UploadOrderAttachment)

	leadsGroup := api.Group("/leads", middleware.RequirePage(h.logger, h.db, user.PageLeads))
	leadsGroup.Post("", h.CreateLead)
	leadsGroup.Get("", h.ListLeads)
	leadsGroup.Get("/:id", h.GetLead)
	leadsGroup.Patch("/:id/status", h.UpdateLeadStatus)
	leadsGroup.Patch("/:id/assignee", h.ReassignLead)
	leadsGroup.Post("/:id/attachment", h.UploadLeadAttachment)
	leadsGroup.Delete("/:id", h.DeleteLead)

	contractorsGroup := api.Group("/contractors", middleware.RequirePage(h.logger, h.db, user.PageContractors))
	contractorsGroup.Post("", h.CreateContractor)
	contractorsGroup.Get("", h.ListContractors)
	contractorsGroup.Get("/:id", h.GetContractor)
	contractorsGroup.Patch("/:id", h.UpdateContractor)
	contractorsGroup.Delete("/:id", h.DeleteContractor)

	usersGroup := api.Group("/users", middleware.RequirePage(h.logger, h.db, user.PageUsers))
	usersGroup.Post("", h.CreateUser)
	usersGroup.Get("", h.ListUsers)
	usersGroup.Get("/:id", h.GetUser)
	usersGroup.Patch("/:id/role", h.ChangeUserRole)
	usersGroup.Put("/:id/pages", h.SetUserPages)
	usersGroup.Post("/:id/password", h.ResetUserPassword)
	usersGroup.Delete("/:id", h.DeactivateUser)
	usersGroup.Get("/:id/assignments", h.ListUserAssignments)

	assignmentsGroup := api.Group("/assignments", middleware.RequirePage(h.logger, h.db, user.PageUsers))
	assignmentsGroup.Get("", h.ListAssignments)
	assignmentsGroup.Post("", h.GrantAssignment)
	assignmentsGroup.Delete("", h.RevokeAssignment)

	auditGroup := api.Group("/audit", middleware.RequirePage(h.logger, h.db, user.PageSettings))
	auditGroup.Get("", h.ListAuditLog)
}
