package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// PaymentMethodDetails holds the displayable card attributes. Raw card
// numbers never reach storage; only the brand and last four digits persist.
type PaymentMethodDetails struct {
	Brand       string `gorm:"column:brand;type:varchar(32)" json:"type"`
	Last4       string `gorm:"column:last4;type:varchar(4)" json:"last4"`
	ExpiryMonth int    `gorm:"column:expiry_month" json:"expiryMonth"`
	ExpiryYear  int    `gorm:"column:expiry_year" json:"expiryYear"`
}

// PaymentMethod is a stored payment instrument belonging to a user. At most
// one method per user is the default.
type PaymentMethod struct {
	ID        uint                 `gorm:"primaryKey" json:"-"`
	UUID      string               `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	UserID    uint                 `gorm:"not null;index" json:"-"`
	Type      string               `gorm:"type:varchar(16);not null;default:'card'" json:"type" validate:"oneof=card"`
	Details   PaymentMethodDetails `gorm:"embedded" json:"details"`
	IsDefault bool                 `gorm:"not null;default:false" json:"isDefault"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (m *PaymentMethod) Validate() error {
	v := validator.New()

	return v.Struct(m)
}

// Last4FromCardNumber derives the displayable suffix from a submitted card
// number without retaining the number itself.
func Last4FromCardNumber(cardNumber string) string {
	digits := make([]rune, 0, len(cardNumber))
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}
