package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestSuccessEnvelope(t *testing.T) {
	app := fiber.New()
	app.Post("/ok", func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, "Saved", fiber.Map{"id": 7})
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/ok", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var envelope SuccessResponse
	assert.NoError(t, json.Unmarshal(body, &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "Saved", envelope.Message)
	assert.NotNil(t, envelope.Data)
}

func TestErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/missing", func(c *fiber.Ctx) error {
		return NotFound(c, "Term not found", "TERM_NOT_FOUND")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var envelope ErrorResponse
	assert.NoError(t, json.Unmarshal(body, &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "TERM_NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "Term not found", envelope.Error.Message)
}
