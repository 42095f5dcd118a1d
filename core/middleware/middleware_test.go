package middleware_test

import (
	"net/http/httptest"
	"testing"

	"forum-importer/core/middleware/auth"
	"forum-importer/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Use(rayid.New())
	app.Use(auth.New(auth.Config{ApiKey: apiKey}))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(rayid.LocalsKey).(string))
	})
	return app
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		sent   string
		status int
	}{
		{"disabled", "", "", fiber.StatusOK},
		{"valid key", "secret", "secret", fiber.StatusOK},
		{"wrong key", "secret", "guess", fiber.StatusUnauthorized},
		{"missing key", "secret", "", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ping", nil)
			if tt.sent != "" {
				req.Header.Set(auth.Header, tt.sent)
			}
			resp, err := newApp(tt.apiKey).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(rayid.Header))
		})
	}
}

func TestRayID_ReusesClientHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(rayid.Header, "ray-123")

	resp, err := newApp("").Test(req)
	require.NoError(t, err)
	assert.Equal(t, "ray-123", resp.Header.Get(rayid.Header))
}
