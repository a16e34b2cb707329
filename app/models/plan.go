package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Plan is a purchasable subscription tier. Features are attached through
// PlanFeature rows carrying the per-plan limit value.
type Plan struct {
	ID              uint          `gorm:"primaryKey" json:"-"`
	UUID            string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	Name            string        `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Description     string        `gorm:"type:text" json:"description" validate:"max=1000"`
	Price           float64       `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	Currency        string        `gorm:"type:varchar(3);not null;default:'USD'" json:"currency" validate:"oneof=USD EUR GBP"`
	BillingCycle    string        `gorm:"type:varchar(16);not null;default:'monthly'" json:"billingCycle" validate:"oneof=monthly yearly"`
	TrialPeriodDays int           `gorm:"not null;default:0" json:"trialPeriodDays" validate:"gte=0"`
	IsActive        bool          `gorm:"not null;default:true" json:"isActive"`
	Features        []PlanFeature `gorm:"foreignKey:PlanID" json:"features"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// PlanFeature links a feature to a plan with the plan-specific limit value.
// LimitValue is stored as a string and interpreted per the feature LimitType.
type PlanFeature struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	PlanID     uint      `gorm:"not null;index:ux_plan_features_plan_feature,unique,priority:1" json:"-"`
	FeatureID  uint      `gorm:"not null;index:ux_plan_features_plan_feature,priority:2" json:"-"`
	Feature    *Feature  `gorm:"foreignKey:FeatureID" json:"feature,omitempty"`
	LimitValue string    `gorm:"type:varchar(191);not null;default:''" json:"limitValue"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}
