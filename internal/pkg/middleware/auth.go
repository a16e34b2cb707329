package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/walleyjs/threls-billing/app/models"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
	"github.com/walleyjs/threls-billing/internal/pkg/token"
	"github.com/walleyjs/threls-billing/internal/pkg/usercontext"
)

// BearerAuth authenticates requests carrying a JWT access token and stores
// the resolved identity in the request locals.
func BearerAuth(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return apiv1.Error(c, apiv1.StatusUnauthorized, "Missing access token")
		}

		claims, err := tokens.ValidateAccessToken(raw)
		if err != nil {
			return apiv1.Error(c, apiv1.StatusUnauthorized, "Invalid or expired access token")
		}

		userID, err := token.UserIDFromClaims(claims)
		if err != nil {
			return apiv1.Error(c, apiv1.StatusUnauthorized, "Invalid access token subject")
		}

		isAdmin := claims.Role == models.ROLE_ADMIN || claims.Role == models.ROLE_SUPER_ADMIN
		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     userID,
			UserUUID:   claims.UserUUID,
			Email:      claims.Email,
			Role:       claims.Role,
			IsLoggedIn: true,
			IsAdmin:    isAdmin,
		})

		return c.Next()
	}
}

// RequireAdmin ensures the authenticated identity holds an administrative
// role; customers are turned away from the admin area.
func RequireAdmin(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsLoggedIn {
		return apiv1.Error(c, apiv1.StatusUnauthorized, "Login required")
	}
	if !uc.IsAdmin {
		return apiv1.Error(c, apiv1.StatusForbidden, "Administrator access required")
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
