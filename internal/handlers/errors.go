package handlers

import (
	"errors"

	"grabbler/internal/models"
	"grabbler/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps service-level sentinel errors to HTTP statuses.
// Business-rule rejections land on 409 (the request was well-formed but
// conflicts with current state), missing aggregates on 404, and retry
// exhaustion on 409 with a refresh-and-retry message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrCartNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrDuplicateItem),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrConcurrencyExhausted):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrPaymentFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// serviceError renders a service failure with the mapped status.
func serviceError(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// currentUserID extracts the authenticated user's ID stored by the JWT
// middleware.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// isAdmin reports whether the authenticated user carries the admin role.
func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == models.RoleAdmin
}
