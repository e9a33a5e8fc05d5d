package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"funprofile/internal/models"
)

// parsePagination reads page and limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// parseID reads a positive integer route param. On failure it writes the
// error response and returns written=true so handlers can bail with nil.
func parseID(c *fiber.Ctx, name string) (id uint, written bool) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid "+name+" parameter"))
		return 0, true
	}
	return uint(v), false
}

// statusForError maps an application error code to an HTTP status.
func statusForError(err error) int {
	switch {
	case models.IsCode(err, "NOT_FOUND"):
		return fiber.StatusNotFound
	case models.IsCode(err, "VALIDATION_ERROR"):
		return fiber.StatusBadRequest
	case models.IsCode(err, "UNAUTHORIZED"):
		return fiber.StatusUnauthorized
	case models.IsCode(err, "UPLOAD_ERROR"), models.IsCode(err, "PERSISTENCE_ERROR"):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes the error with the mapped status.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}
