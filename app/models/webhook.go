package models

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"
)

// WebhookEventType is a lifecycle tag a webhook can subscribe to. The set is
// closed; anything else is rejected at validation time.
type WebhookEventType string

const (
	EventSubscriptionCreated  WebhookEventType = "subscription.created"
	EventSubscriptionUpdated  WebhookEventType = "subscription.updated"
	EventSubscriptionCanceled WebhookEventType = "subscription.canceled"
	EventSubscriptionRenewed  WebhookEventType = "subscription.renewed"
	EventPaymentSucceeded     WebhookEventType = "payment.succeeded"
	EventPaymentFailed        WebhookEventType = "payment.failed"
	EventPaymentRefunded      WebhookEventType = "payment.refunded"
)

// WebhookEventTypes lists every valid event type in wire order.
var WebhookEventTypes = []WebhookEventType{
	EventSubscriptionCreated,
	EventSubscriptionUpdated,
	EventSubscriptionCanceled,
	EventSubscriptionRenewed,
	EventPaymentSucceeded,
	EventPaymentFailed,
	EventPaymentRefunded,
}

// IsValidWebhookEventType reports whether tag belongs to the closed enum.
func IsValidWebhookEventType(tag WebhookEventType) bool {
	for _, t := range WebhookEventTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// WebhookEventSet is the persisted event subscription set. It is stored as a
// JSON array; duplicates collapse and order is not significant.
type WebhookEventSet []WebhookEventType

// Normalize collapses duplicates and sorts the set into a stable order.
func (s WebhookEventSet) Normalize() WebhookEventSet {
	seen := make(map[WebhookEventType]struct{}, len(s))
	out := make(WebhookEventSet, 0, len(s))
	for _, e := range s {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether the set subscribes to the given event type.
func (s WebhookEventSet) Contains(tag WebhookEventType) bool {
	for _, e := range s {
		if e == tag {
			return true
		}
	}
	return false
}

// Validate checks that the set is non-empty and only holds known tags.
func (s WebhookEventSet) Validate() error {
	if len(s) == 0 {
		return errors.New("events must contain at least one event type")
	}
	for _, e := range s {
		if !IsValidWebhookEventType(e) {
			return fmt.Errorf("unknown event type %q", string(e))
		}
	}
	return nil
}

// Value implements driver.Valuer so GORM can persist the set as JSON.
func (s WebhookEventSet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.Normalize())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the JSON column back.
func (s *WebhookEventSet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into WebhookEventSet", value)
	}
	return json.Unmarshal(raw, s)
}

const (
	WebhookStatusNone = ""

	webhookSecretPrefix = "whsec_"
	webhookSecretBytes  = 24
)

// Webhook is a per-account registration of a destination URL that the
// delivery workers notify when subscribed events occur. Delivery bookkeeping
// (LastStatus, LastResponse, FailedAttempts) is written by the delivery side
// only; the management API treats those fields as read-only.
type Webhook struct {
	ID             uint            `gorm:"primaryKey" json:"-"`
	UUID           string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	UserID         uint            `gorm:"not null;index" json:"userId"`
	URL            string          `gorm:"type:varchar(2048);not null" json:"url" validate:"required,url"`
	Secret         string          `gorm:"type:varchar(191);not null" json:"secret" validate:"required"`
	Events         WebhookEventSet `gorm:"type:json;not null" json:"events"`
	IsActive       bool            `gorm:"not null;default:true" json:"isActive"`
	LastStatus     string          `gorm:"type:varchar(16);default:''" json:"lastStatus"`
	LastResponse   string          `gorm:"type:text" json:"lastResponse"`
	FailedAttempts int             `gorm:"not null;default:0" json:"failedAttempts"`
	DeliveryCount  int64           `gorm:"not null;default:0" json:"deliveryCount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Validate enforces the persisted-webhook invariants: a syntactically valid
// absolute URL, a non-empty secret and a non-empty set of known event types.
func (w *Webhook) Validate() error {
	if err := ValidateWebhookURL(w.URL); err != nil {
		return err
	}
	if w.Secret == "" {
		return errors.New("secret must not be empty")
	}
	return w.Events.Validate()
}

// ValidateWebhookURL checks that raw parses as an absolute URL with a scheme
// and a host.
func ValidateWebhookURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("url must be a valid absolute URL")
	}
	return nil
}

// GenerateWebhookSecret returns a fresh signing secret from a
// cryptographically secure random source.
func GenerateWebhookSecret() (string, error) {
	b := make([]byte, webhookSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return webhookSecretPrefix + hex.EncodeToString(b), nil
}

// EnsureSecret fills in a generated secret when the caller left it blank.
func (w *Webhook) EnsureSecret() error {
	if w.Secret != "" {
		return nil
	}
	secret, err := GenerateWebhookSecret()
	if err != nil {
		return err
	}
	w.Secret = secret
	return nil
}
