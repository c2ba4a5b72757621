package presenter

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jobport/jobport/pkg/account"
)

// ErrorResponse is the envelope for single-message errors. Field-level
// validation errors are rendered flat instead, see Fields.
type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// Fields renders a validation error as a 400 with one message per
// offending field, mirroring the request body shape.
func Fields(c *fiber.Ctx, ve account.ValidationError) error {
	return JSON(c, http.StatusBadRequest, ve)
}
