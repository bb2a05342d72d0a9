package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorBody is the JSON shape of every non-2xx response: a
// human-readable message plus optional field-level details.
type ErrorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func writeError(c *fiber.Ctx, status int, message string, errs ...string) error {
	return c.Status(status).JSON(ErrorBody{Message: message, Errors: errs})
}

// userID extracts the authenticated user's id set by RequireAuth.
func userID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
