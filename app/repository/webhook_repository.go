package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// webhookRepository implements the WebhookRepository interface
type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new webhook repository instance
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

// Create creates a new webhook subscription
func (r *webhookRepository) Create(webhook *models.Webhook) error {
	return r.db.Create(webhook).Error
}

// GetByID retrieves a webhook by its database ID
func (r *webhookRepository) GetByID(id uint) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.First(&webhook, id).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// GetByUUID retrieves a webhook by its public identifier
func (r *webhookRepository) GetByUUID(uuid string) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.Where("uuid = ?", uuid).First(&webhook).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// GetByUUIDAndUserID retrieves a webhook scoped to its owning account
func (r *webhookRepository) GetByUUIDAndUserID(uuid string, userID uint) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.Where("uuid = ? AND user_id = ?", uuid, userID).First(&webhook).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// GetByUserID retrieves all webhooks of a user, newest first
func (r *webhookRepository) GetByUserID(userID uint) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&webhooks).Error
	return webhooks, err
}

// Update replaces the stored webhook record
func (r *webhookRepository) Update(webhook *models.Webhook) error {
	return r.db.Save(webhook).Error
}

// Delete removes a webhook permanently
func (r *webhookRepository) Delete(id uint) error {
	return r.db.Delete(&models.Webhook{}, id).Error
}

// CountByUserID counts the webhooks registered by a user
func (r *webhookRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Webhook{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
