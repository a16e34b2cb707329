package controllers

import (
	"errors"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/walleyjs/threls-billing/internal/pkg/token"
	"github.com/walleyjs/threls-billing/internal/pkg/usercontext"
)

var (
	tokenService     *token.Service
	tokenServiceOnce sync.Once
)

// getTokenService returns the shared token service. Construction is deferred
// so the env file is loaded before the secret is read.
func getTokenService() *token.Service {
	tokenServiceOnce.Do(func() {
		if tokenService == nil {
			tokenService = token.NewServiceFromEnv()
		}
	})
	return tokenService
}

// SetTokenService overrides the token service. Tests use this to install a
// service with a known secret.
func SetTokenService(svc *token.Service) {
	tokenService = svc
	tokenServiceOnce = sync.Once{}
}

// currentUser returns the authenticated identity for the request.
func currentUser(c *fiber.Ctx) usercontext.UserContext {
	return usercontext.GetUserContext(c)
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// isNotFound reports whether err is the record-not-found sentinel.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
