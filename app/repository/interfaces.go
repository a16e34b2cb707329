package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUUID(uuid string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// PlanRepository defines the interface for plan-related database operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetByUUID(uuid string) (*models.Plan, error)
	GetAll() ([]models.Plan, error)
	GetActive() ([]models.Plan, error)
	Update(plan *models.Plan) error
	ReplaceFeatures(planID uint, features []models.PlanFeature) error
	Delete(id uint) error
	Count() (int64, error)
}

// FeatureRepository defines the interface for feature catalog operations
type FeatureRepository interface {
	Create(feature *models.Feature) error
	GetByID(id uint) (*models.Feature, error)
	GetByUUID(uuid string) (*models.Feature, error)
	GetAll() ([]models.Feature, error)
	KeyExists(key string) (bool, error)
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByUUID(uuid string) (*models.Subscription, error)
	GetCurrentByUserID(userID uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	ListWithUsers() ([]models.Subscription, error)
	CountByStatus(status string) (int64, error)
	Count() (int64, error)
}

// PaymentMethodRepository defines the interface for payment method operations
type PaymentMethodRepository interface {
	Create(method *models.PaymentMethod) error
	GetByUUID(uuid string) (*models.PaymentMethod, error)
	GetByUserID(userID uint) ([]models.PaymentMethod, error)
	SetDefault(userID uint, methodID uint) error
	Delete(id uint) error
}

// TransactionListParams narrows and pages the admin transaction listing.
// Search matches the invoice number or the customer name/email.
type TransactionListParams struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// TransactionRepository defines the interface for transaction operations
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	GetByUUID(uuid string) (*models.Transaction, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Transaction, error)
	List(params TransactionListParams) ([]models.Transaction, int64, error)
	SumAmountByStatus(status string) (float64, error)
	NextInvoiceSequence() (int64, error)
}

// WebhookRepository defines the interface for webhook subscription operations
type WebhookRepository interface {
	Create(webhook *models.Webhook) error
	GetByID(id uint) (*models.Webhook, error)
	GetByUUID(uuid string) (*models.Webhook, error)
	GetByUUIDAndUserID(uuid string, userID uint) (*models.Webhook, error)
	GetByUserID(userID uint) ([]models.Webhook, error)
	Update(webhook *models.Webhook) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
}

// DashboardStats aggregates the admin dashboard counters.
type DashboardStats struct {
	TotalSubscribers   int64   `json:"totalSubscribers"`
	ActiveSubscribers  int64   `json:"activeSubscribers"`
	PastDueSubscribers int64   `json:"pastDueSubscribers"`
	TrialSubscribers   int64   `json:"trialSubscribers"`
	TotalRevenue       float64 `json:"totalRevenue"`
	SubscriptionPlans  int64   `json:"subscriptionPlans"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Plan          PlanRepository
	Feature       FeatureRepository
	Subscription  SubscriptionRepository
	PaymentMethod PaymentMethodRepository
	Transaction   TransactionRepository
	Webhook       WebhookRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Plan:          NewPlanRepository(db),
		Feature:       NewFeatureRepository(db),
		Subscription:  NewSubscriptionRepository(db),
		PaymentMethod: NewPaymentMethodRepository(db),
		Transaction:   NewTransactionRepository(db),
		Webhook:       NewWebhookRepository(db),
	}
}
