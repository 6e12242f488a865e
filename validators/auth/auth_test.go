package authValidator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestLoginValidatorRejectsBadPayload(t *testing.T) {
	app := fiber.New()
	reached := false
	app.Post("/login", Login(), func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.False(t, reached)
}

func TestLoginValidatorPassesValidPayload(t *testing.T) {
	app := fiber.New()
	var email string
	app.Post("/login", Login(), func(c *fiber.Ctx) error {
		reqData, ok := c.Locals("validatedLogin").(*struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})
		require.True(t, ok)
		email = reqData.Email
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"dev@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "dev@example.com", email)
}
