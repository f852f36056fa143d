package utils

import (
	"bizzybrain/backend/config"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func jwtTestApp(t *testing.T, cfg *config.Config) (*fiber.App, *uuid.UUID, *error) {
	t.Helper()
	var gotID uuid.UUID
	var gotErr error
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		gotID, gotErr = ExtractUserIDFromToken(c, cfg)
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &gotID, &gotErr
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	userID := uuid.New()

	token, err := GenerateJWTToken(userID, "kid@example.com", cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	app, gotID, gotErr := jwtTestApp(t, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", token)
	_, err = app.Test(req)
	assert.NoError(t, err)
	assert.NoError(t, *gotErr)
	assert.Equal(t, userID, *gotID)
}

func TestJWTBearerScheme(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	userID := uuid.New()
	token, _ := GenerateJWTToken(userID, "kid@example.com", cfg)

	app, gotID, gotErr := jwtTestApp(t, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.NoError(t, *gotErr)
	assert.Equal(t, userID, *gotID)
}

func TestJWTRejectsBadToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app, _, gotErr := jwtTestApp(t, cfg)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "not-a-token")
	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.Error(t, *gotErr)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateJWTToken(uuid.New(), "kid@example.com", &config.Config{JWTSecret: "one"})

	app, _, gotErr := jwtTestApp(t, &config.Config{JWTSecret: "two"})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", token)
	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.Error(t, *gotErr)
}

func TestJWTMissingHeader(t *testing.T) {
	app, _, gotErr := jwtTestApp(t, &config.Config{JWTSecret: "testsecret"})
	req := httptest.NewRequest("GET", "/", nil)
	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.Error(t, *gotErr)
}
