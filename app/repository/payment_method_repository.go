package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// paymentMethodRepository implements the PaymentMethodRepository interface
type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository instance
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

// Create creates a new payment method. The first method of a user becomes
// the default automatically.
func (r *paymentMethodRepository) Create(method *models.PaymentMethod) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", method.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			method.IsDefault = true
		} else if method.IsDefault {
			if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", method.UserID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(method).Error
	})
}

// GetByUUID retrieves a payment method by its public identifier
func (r *paymentMethodRepository) GetByUUID(uuid string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.Where("uuid = ?", uuid).First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetByUserID retrieves all payment methods of a user, default first
func (r *paymentMethodRepository) GetByUserID(userID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.Where("user_id = ?", userID).Order("is_default DESC, created_at DESC").Find(&methods).Error
	return methods, err
}

// SetDefault marks one method as default and clears the flag on the rest
func (r *paymentMethodRepository) SetDefault(userID uint, methodID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentMethod{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND user_id = ?", methodID, userID).
			Update("is_default", true).Error
	})
}

// Delete removes a payment method
func (r *paymentMethodRepository) Delete(id uint) error {
	return r.db.Delete(&models.PaymentMethod{}, id).Error
}
