package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByUUID retrieves a subscription by its public identifier
func (r *subscriptionRepository) GetByUUID(uuid string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan.Features.Feature").Where("uuid = ?", uuid).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetCurrentByUserID retrieves the user's most recent entitling subscription
func (r *subscriptionRepository) GetCurrentByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan.Features.Feature").
		Where("user_id = ? AND status IN ?", userID, []string{
			models.SubscriptionStatusActive,
			models.SubscriptionStatusTrial,
			models.SubscriptionStatusPastDue,
		}).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserID retrieves all subscriptions of a user, newest first
func (r *subscriptionRepository) GetByUserID(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Plan").Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// Update updates an existing subscription
func (r *subscriptionRepository) Update(sub *models.Subscription) error {
	return r.db.Omit("Plan", "User").Save(sub).Error
}

// ListWithUsers retrieves every subscription joined with its user and plan
func (r *subscriptionRepository) ListWithUsers() ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("User").Preload("Plan").Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// CountByStatus counts subscriptions in a given status
func (r *subscriptionRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Count returns the total number of subscriptions
func (r *subscriptionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Count(&count).Error
	return count, err
}
