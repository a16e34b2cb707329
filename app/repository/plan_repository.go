package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan together with its feature rows
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID including features
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features.Feature").First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByUUID retrieves a plan by its public identifier including features
func (r *planRepository) GetByUUID(uuid string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Preload("Features.Feature").Where("uuid = ?", uuid).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves every plan ordered by price
func (r *planRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Preload("Features.Feature").Order("price ASC").Find(&plans).Error
	return plans, err
}

// GetActive retrieves only plans currently offered to customers
func (r *planRepository) GetActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Preload("Features.Feature").Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Omit("Features").Save(plan).Error
}

// ReplaceFeatures swaps the plan's feature rows atomically
func (r *planRepository) ReplaceFeatures(planID uint, features []models.PlanFeature) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&models.PlanFeature{}).Error; err != nil {
			return err
		}
		if len(features) == 0 {
			return nil
		}
		for i := range features {
			features[i].PlanID = planID
		}
		return tx.Create(&features).Error
	})
}

// Delete removes a plan and its feature rows
func (r *planRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&models.PlanFeature{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Plan{}, id).Error
	})
}

// Count returns the total number of plans
func (r *planRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Plan{}).Count(&count).Error
	return count, err
}
