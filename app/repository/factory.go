package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		if f.repos == nil {
			f.repos = NewRepositories(f.db)
		}
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetPlanRepository returns the plan repository instance
func (f *Factory) GetPlanRepository() PlanRepository {
	return f.GetRepositories().Plan
}

// GetFeatureRepository returns the feature repository instance
func (f *Factory) GetFeatureRepository() FeatureRepository {
	return f.GetRepositories().Feature
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// GetPaymentMethodRepository returns the payment method repository instance
func (f *Factory) GetPaymentMethodRepository() PaymentMethodRepository {
	return f.GetRepositories().PaymentMethod
}

// GetTransactionRepository returns the transaction repository instance
func (f *Factory) GetTransactionRepository() TransactionRepository {
	return f.GetRepositories().Transaction
}

// GetWebhookRepository returns the webhook repository instance
func (f *Factory) GetWebhookRepository() WebhookRepository {
	return f.GetRepositories().Webhook
}

// Global factory instance
var globalFactory *Factory
var factoryMu sync.Mutex

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewFactory(db)
	}
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}

// SetGlobalRepositories replaces the global repository set. Tests use this to
// install fakes without a database connection.
func SetGlobalRepositories(repos *Repositories) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	globalFactory = &Factory{repos: repos}
}
