package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/walleyjs/threls-billing/internal/pkg/env"
)

const (
	issuer          = "threls-billing"
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Claims carries the authenticated identity inside an access token.
type Claims struct {
	UserUUID string `json:"uid"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Pair is the access/refresh token pair handed to clients on login.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service issues and validates the JWT pairs used by the API.
type Service struct {
	secret []byte
}

// NewService creates a token service with an explicit signing secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// NewServiceFromEnv creates a token service configured from JWT_SECRET.
func NewServiceFromEnv() *Service {
	return NewService(env.GetEnv("JWT_SECRET", "dev-secret-change-me"))
}

// GeneratePair issues a fresh access/refresh pair for a user identity.
func (s *Service) GeneratePair(userID uint, userUUID, role, email string) (Pair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserUUID: userUUID,
		Role:     role,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	})
	accessToken, err := access.SignedString(s.secret)
	if err != nil {
		return Pair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
	})
	refreshToken, err := refresh.SignedString(s.secret)
	if err != nil {
		return Pair{}, err
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateAccessToken parses and verifies an access token.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// RefreshTokenExpiry returns when a refresh token issued now expires.
func RefreshTokenExpiry(now time.Time) time.Time {
	return now.Add(refreshTokenTTL)
}

// HashRefreshToken returns the storable digest of a refresh token.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// UserIDFromClaims extracts the numeric user ID out of the subject claim.
func UserIDFromClaims(c *Claims) (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
