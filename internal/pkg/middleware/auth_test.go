package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/internal/pkg/token"
	"github.com/walleyjs/threls-billing/internal/pkg/usercontext"
)

func newAuthTestApp(tokens *token.Service) *fiber.App {
	app := fiber.New()
	app.Use(BearerAuth(tokens))
	app.Get("/me", func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		return c.JSON(uc)
	})
	app.Get("/admin-only", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func authedRequest(t *testing.T, app *fiber.App, path, bearer string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestBearerAuthResolvesIdentity(t *testing.T) {
	tokens := token.NewService("test-secret")
	app := newAuthTestApp(tokens)

	pair, err := tokens.GeneratePair(7, "user-7", models.ROLE_USER, "alice@example.com")
	require.NoError(t, err)

	resp := authedRequest(t, app, "/me", pair.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var uc usercontext.UserContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uc))
	assert.Equal(t, uint(7), uc.UserID)
	assert.Equal(t, "user-7", uc.UserUUID)
	assert.Equal(t, "alice@example.com", uc.Email)
	assert.True(t, uc.IsLoggedIn)
	assert.False(t, uc.IsAdmin)
}

func TestBearerAuthRejectsBadTokens(t *testing.T) {
	tokens := token.NewService("test-secret")
	app := newAuthTestApp(tokens)

	otherService := token.NewService("other-secret")
	foreign, err := otherService.GeneratePair(7, "user-7", models.ROLE_USER, "alice@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		bearer string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"foreign signature", foreign.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := authedRequest(t, app, "/me", tt.bearer)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tokens := token.NewService("test-secret")
	app := newAuthTestApp(tokens)

	customer, err := tokens.GeneratePair(1, "user-1", models.ROLE_USER, "user@example.com")
	require.NoError(t, err)
	admin, err := tokens.GeneratePair(2, "user-2", models.ROLE_ADMIN, "admin@example.com")
	require.NoError(t, err)
	super, err := tokens.GeneratePair(3, "user-3", models.ROLE_SUPER_ADMIN, "root@example.com")
	require.NoError(t, err)

	resp := authedRequest(t, app, "/admin-only", customer.AccessToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = authedRequest(t, app, "/admin-only", admin.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = authedRequest(t, app, "/admin-only", super.AccessToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
