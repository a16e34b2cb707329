package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	LimitTypeBoolean = "boolean"
	LimitTypeNumber  = "number"
	LimitTypeString  = "string"
)

// Feature is a capability that plans can include, identified by a stable key.
type Feature struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	UUID              string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	Name              string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Key               string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key" validate:"required,min=2,max=100"`
	Description       string    `gorm:"type:text" json:"description" validate:"max=1000"`
	LimitType         string    `gorm:"type:varchar(16);not null;default:'boolean'" json:"limitType" validate:"oneof=boolean number string"`
	DefaultLimitValue string    `gorm:"type:varchar(191);not null;default:''" json:"defaultLimitValue"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (f *Feature) Validate() error {
	v := validator.New()

	return v.Struct(f)
}
