package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrial    = "trial"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription ties a user to a plan. Period boundaries and billing dates are
// written by the payment pipeline; the management API only reads them and
// flips the cancellation flag.
type Subscription struct {
	ID                    uint       `gorm:"primaryKey" json:"-"`
	UUID                  string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	UserID                uint       `gorm:"not null;index" json:"-"`
	User                  *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID                uint       `gorm:"not null;index" json:"-"`
	Plan                  *Plan      `gorm:"foreignKey:PlanID" json:"planId,omitempty"`
	Status                string     `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	PaymentMethod         string     `gorm:"type:varchar(64);default:''" json:"paymentMethod"`
	CurrentPeriodStart    *time.Time `gorm:"type:timestamp;default:null" json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd      *time.Time `gorm:"type:timestamp;default:null" json:"currentPeriodEnd,omitempty"`
	NextBillingDate       *time.Time `gorm:"type:timestamp;default:null" json:"nextBillingDate,omitempty"`
	CancellationRequested bool       `gorm:"not null;default:false" json:"cancellationRequested"`
	CanceledAt            *time.Time `gorm:"type:timestamp;default:null" json:"canceledAt,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsEntitling reports whether the subscription currently grants plan access.
func (s *Subscription) IsEntitling() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrial
}

// Cancel marks the subscription as cancellation-requested. Access persists
// until the current period ends; the billing pipeline performs the final
// status transition.
func (s *Subscription) Cancel(now time.Time) {
	if s.CancellationRequested {
		return
	}
	s.CancellationRequested = true
	s.CanceledAt = &now
}
