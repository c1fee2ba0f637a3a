package web

import (
	"opsdesk/internal/database"

	"github.com/gofiber/fiber/v2"
)

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func userResponse(u database.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"pages":      u.Pages,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt,
	}
}

func contractorResponse(ct database.Contractor) fiber.Map {
	return fiber.Map{
		"id":            ct.ID,
		"name":          ct.Name,
		"nickname":      ct.Nickname,
		"city":          ct.City,
		"customer_type": ct.CustomerType,
		"phone":         ct.Phone,
		"created_at":    ct.CreatedAt,
	}
}

func leadResponse(l database.Lead) fiber.Map {
	return fiber.Map{
		"id":             l.ID,
		"lead_id":        l.LeadID,
		"name":           l.Name,
		"phone":          l.Phone,
		"city":           l.City,
		"source":         l.Source,
		"status":         l.Status,
		"assigned_to":    l.AssignedTo,
		"attachment_url": l.AttachmentURL,
		"created_by":     l.CreatedBy,
		"created_at":     l.CreatedAt,
	}
}

func orderResponse(o database.Order) fiber.Map {
	return fiber.Map{
		"id":             o.ID,
		"order_id":       o.OrderID,
		"customer_name":  o.CustomerName,
		"city":           o.City,
		"amount_paise":   o.AmountPaise,
		"status":         o.Status,
		"attachment_url": o.AttachmentURL,
		"created_by":     o.CreatedBy,
		"created_at":     o.CreatedAt,
	}
}

func assignmentResponse(a database.Assignment) fiber.Map {
	return fiber.Map{
		"id":            a.ID,
		"user_id":       a.UserID,
		"contractor_id": a.ContractorID,
		"created_at":    a.CreatedAt,
	}
}
