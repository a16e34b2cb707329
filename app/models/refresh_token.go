package models

import "time"

// RefreshToken stores the hash of an issued refresh token so logout can
// invalidate it server-side. Raw tokens are never persisted.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	TokenHash string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"type:timestamp;not null;index" json:"expires_at"`
	RevokedAt *time.Time `gorm:"type:timestamp;default:null" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

// IsValid reports whether the token is unrevoked and unexpired at now.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
