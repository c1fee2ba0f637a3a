package web

import (
	"errors"
	"fmt"

	"opsdesk/internal/middleware"
	"opsdesk/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// maxAttachmentSize caps uploads at 10 MiB.
const maxAttachmentSize = 10 << 20

var (
	errAttachmentMissing  = errors.New("web: attachment file missing")
	errAttachmentTooLarge = errors.New("web: attachment too large")
)

// storeAttachment reads the multipart "file" field, applies the upload
// rate limit and stores the content in S3. Returns the public URL.
// Failures come back as errors for attachmentError to translate; no
// response is written here.
func (h *Handler) storeAttachment(c *fiber.Ctx) (string, error) {
	actorID := middleware.UserID(c)

	if err := h.limiter.CheckUpload(c.Context(), actorID.String()); err != nil {
		return "", err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", errAttachmentMissing
	}
	if fileHeader.Size > maxAttachmentSize {
		return "", errAttachmentTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key, err := h.storage.Store(c.Context(), actorID, fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}

	return h.storage.PublicURL(key), nil
}

// attachmentError maps a storeAttachment failure onto the response.
func (h *Handler) attachmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ratelimit.ErrTooManyAttempts):
		return errorResponse(c, fiber.StatusTooManyRequests, "Too many uploads. Please try again later.")
	case errors.Is(err, errAttachmentMissing):
		return errorResponse(c, fiber.StatusBadRequest, "A file field is required")
	case errors.Is(err, errAttachmentTooLarge):
		return errorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 10MB limit")
	default:
		h.logger.Error("Failed to store attachment", "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment")
	}
}
