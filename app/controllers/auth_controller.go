package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
	"github.com/walleyjs/threls-billing/internal/pkg/database"
	"github.com/walleyjs/threls-billing/internal/pkg/token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   *models.User `json:"user"`
	Tokens token.Pair   `json:"tokens"`
}

// HandleLogin authenticates email/password credentials and issues a token
// pair.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Email and password are required")
	}

	// same message for unknown email and bad password
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		return apiv1.Error(c, apiv1.StatusUnauthorized, "Invalid email or password")
	}
	if !user.CheckPassword(req.Password) {
		return apiv1.Error(c, apiv1.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive() {
		return apiv1.Error(c, apiv1.StatusForbidden, "Account is not active")
	}

	pair, err := issueTokenPair(user)
	if err != nil {
		log.Printf("failed to issue tokens for user %d: %v", user.ID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not complete login")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("failed to record login time for user %d: %v", user.ID, err)
	}

	return apiv1.Success(c, "Login successful", authResponse{User: user, Tokens: pair})
}

// HandleRegister creates a customer account and logs it in.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "An account with this email already exists")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid registration details")
	}
	if err := repo.Create(user); err != nil {
		log.Printf("failed to create user: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not create account")
	}

	pair, err := issueTokenPair(user)
	if err != nil {
		log.Printf("failed to issue tokens for user %d: %v", user.ID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not complete registration")
	}

	return apiv1.Success(c, "Registration successful", authResponse{User: user, Tokens: pair})
}

// HandleLogout revokes the presented refresh token. The client clears its
// local session regardless of the outcome here.
func HandleLogout(c *fiber.Ctx) error {
	var req logoutRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return apiv1.Success(c, "Logged out", nil)
	}

	hash := token.HashRefreshToken(req.RefreshToken)
	now := time.Now()
	if db := database.GetDB(); db != nil {
		var stored models.RefreshToken
		err := db.Where("token_hash = ?", hash).First(&stored).Error
		// Revoking an already dead token is a no-op
		if err == nil && stored.IsValid(now) {
			if err := db.Model(&stored).Update("revoked_at", now).Error; err != nil {
				log.Printf("failed to revoke refresh token: %v", err)
			}
		}
	}

	return apiv1.Success(c, "Logged out", nil)
}

// issueTokenPair signs a fresh pair and persists the refresh token hash so
// logout can invalidate it.
func issueTokenPair(user *models.User) (token.Pair, error) {
	pair, err := getTokenService().GeneratePair(user.ID, user.UUID, user.Role, user.Email)
	if err != nil {
		return token.Pair{}, err
	}

	if db := database.GetDB(); db != nil {
		record := models.RefreshToken{
			UserID:    user.ID,
			TokenHash: token.HashRefreshToken(pair.RefreshToken),
			ExpiresAt: token.RefreshTokenExpiry(time.Now()),
		}
		if err := db.Create(&record).Error; err != nil {
			log.Printf("failed to persist refresh token for user %d: %v", user.ID, err)
		}
	}

	return pair, nil
}
