package models

import (
	"fmt"
	"time"
)

const (
	TransactionStatusPaid     = "paid"
	TransactionStatusPending  = "pending"
	TransactionStatusFailed   = "failed"
	TransactionStatusRefunded = "refunded"
)

// Transaction is an invoice-level charge record produced by the payment
// pipeline. The management API exposes it read-only.
type Transaction struct {
	ID             uint          `gorm:"primaryKey" json:"-"`
	UUID           string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	UserID         uint          `gorm:"not null;index" json:"-"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionID uint          `gorm:"index" json:"-"`
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
	InvoiceNumber  string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"invoiceNumber"`
	Amount         float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency       string        `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status         string        `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Description    string        `gorm:"type:text" json:"description"`
	PaidAt         *time.Time    `gorm:"type:timestamp;default:null" json:"paidAt,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NewInvoiceNumber builds an invoice reference from the issue date and a
// per-day sequence number.
func NewInvoiceNumber(issuedAt time.Time, sequence int64) string {
	return fmt.Sprintf("INV-%s-%05d", issuedAt.Format("20060102"), sequence)
}
