package client

import "time"

// Role values as reported by the API.
const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Subscription status values.
const (
	SubscriptionActive   = "active"
	SubscriptionTrial    = "trial"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// User is the account record returned by login, register and admin lookups.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLoginAt,omitempty"`
}

// IsAdmin reports whether the user may reach the admin area.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperAdmin)
}

// TokenPair is the access/refresh pair issued at login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the payload of a successful login or registration.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// PlanFeature is a feature attached to a plan with its limit for that plan.
type PlanFeature struct {
	Feature    *Feature `json:"feature,omitempty"`
	LimitValue string   `json:"limitValue"`
}

// Plan is a purchasable subscription plan.
type Plan struct {
	ID              string        `json:"_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Price           float64       `json:"price"`
	Currency        string        `json:"currency"`
	BillingCycle    string        `json:"billingCycle"`
	TrialPeriodDays int           `json:"trialPeriodDays"`
	IsActive        bool          `json:"isActive"`
	Features        []PlanFeature `json:"features,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// Feature is a catalog entry usable across plans.
type Feature struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Key               string    `json:"key"`
	Description       string    `json:"description"`
	LimitType         string    `json:"limitType"`
	DefaultLimitValue string    `json:"defaultLimitValue"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Subscription ties a user to a plan.
type Subscription struct {
	ID                    string     `json:"_id"`
	User                  *User      `json:"user,omitempty"`
	Plan                  *Plan      `json:"planId,omitempty"`
	Status                string     `json:"status"`
	PaymentMethod         string     `json:"paymentMethod"`
	CurrentPeriodStart    *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd      *time.Time `json:"currentPeriodEnd,omitempty"`
	NextBillingDate       *time.Time `json:"nextBillingDate,omitempty"`
	CancellationRequested bool       `json:"cancellationRequested"`
	CanceledAt            *time.Time `json:"canceledAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`

	// Entitlements is only populated on the current-subscription endpoint.
	Entitlements map[string]Entitlement `json:"entitlements,omitempty"`
}

// Entitlement is the effective grant for one feature key on the caller's plan.
type Entitlement struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	LimitType  string `json:"limitType"`
	LimitValue string `json:"limitValue"`
}

// PaymentMethodDetails mirrors the card summary stored on file. Only the
// last four digits ever reach the API.
type PaymentMethodDetails struct {
	Brand       string `json:"type"`
	Last4       string `json:"last4"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
}

// PaymentMethod is a stored payment instrument.
type PaymentMethod struct {
	ID        string               `json:"_id"`
	Type      string               `json:"type"`
	Details   PaymentMethodDetails `json:"details"`
	IsDefault bool                 `json:"isDefault"`
	CreatedAt time.Time            `json:"createdAt"`
}

// Transaction is a billing event with its invoice reference. Admin
// listings include the customer under "user".
type Transaction struct {
	ID            string     `json:"_id"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Description   string     `json:"description"`
	InvoiceNumber string     `json:"invoiceNumber"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	User          *User      `json:"user,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Webhook is an event subscription delivering billing events to a URL.
type Webhook struct {
	ID             string    `json:"_id"`
	UserID         uint      `json:"userId"`
	URL            string    `json:"url"`
	Secret         string    `json:"secret"`
	Events         []string  `json:"events"`
	IsActive       bool      `json:"isActive"`
	LastStatus     string    `json:"lastStatus,omitempty"`
	LastResponse   string    `json:"lastResponse,omitempty"`
	FailedAttempts int       `json:"failedAttempts"`
	DeliveryCount  int64     `json:"deliveryCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Pagination describes a paged listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Subscriber is the admin view of a customer with their subscription.
type Subscriber struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Plan         string        `json:"plan"`
	Subscription *Subscription `json:"subscription,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// DashboardStats are the admin dashboard headline numbers.
type DashboardStats struct {
	TotalSubscribers   int64   `json:"totalSubscribers"`
	ActiveSubscribers  int64   `json:"activeSubscribers"`
	PastDueSubscribers int64   `json:"pastDueSubscribers"`
	TrialSubscribers   int64   `json:"trialSubscribers"`
	TotalRevenue       float64 `json:"totalRevenue"`
	SubscriptionPlans  int64   `json:"subscriptionPlans"`
}
