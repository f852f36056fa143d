package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope for successful replies.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse carries a human message plus a machine-readable code.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Success sends a JSON success envelope.
func Success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a JSON error envelope with a machine-readable code.
func Error(c *fiber.Ctx, status int, message, code string, details ...interface{}) error {
	detail := ErrorDetail{Message: message, Code: code}
	if len(details) > 0 {
		detail.Details = details[0]
	}
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   detail,
	})
}

// ValidationError reports field-level validation failures.
func ValidationError(c *fiber.Ctx, errors map[string]string) error {
	return Error(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", errors)
}

// BadRequest sends 400 with the given message.
func BadRequest(c *fiber.Ctx, message, code string) error {
	return Error(c, fiber.StatusBadRequest, message, code)
}

// NotFound sends 404 with the given message.
func NotFound(c *fiber.Ctx, message, code string) error {
	return Error(c, fiber.StatusNotFound, message, code)
}

// Unauthorized sends 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message, "UNAUTHORIZED")
}

// Internal sends 500.
func Internal(c *fiber.Ctx, message, code string) error {
	return Error(c, fiber.StatusInternalServerError, message, code)
}
