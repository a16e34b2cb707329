package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyUserUUID    = "user_uuid"
	KeyRole        = "role"
	KeyIsAdmin     = "isAdmin"
)
