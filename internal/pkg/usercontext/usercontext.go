package usercontext

import "github.com/gofiber/fiber/v2"

// UserContext represents the authenticated identity for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	UserUUID   string `json:"user_uuid"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// SetUserContext stores the authenticated identity on the request
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
	c.Locals(KeyUserID, uc.UserID)
	c.Locals(KeyUserUUID, uc.UserUUID)
	c.Locals(KeyRole, uc.Role)
	c.Locals(KeyIsAdmin, uc.IsAdmin)
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the current user holds an administrative role
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetUserID returns the current user's ID, or 0 if not logged in
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
