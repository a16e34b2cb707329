package repository

import (
	"github.com/walleyjs/threls-billing/app/models"
	"gorm.io/gorm"
)

// featureRepository implements the FeatureRepository interface
type featureRepository struct {
	db *gorm.DB
}

// NewFeatureRepository creates a new feature repository instance
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &featureRepository{db: db}
}

// Create creates a new feature in the catalog
func (r *featureRepository) Create(feature *models.Feature) error {
	return r.db.Create(feature).Error
}

// GetByID retrieves a feature by its ID
func (r *featureRepository) GetByID(id uint) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.First(&feature, id).Error
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

// GetByUUID retrieves a feature by its public identifier
func (r *featureRepository) GetByUUID(uuid string) (*models.Feature, error) {
	var feature models.Feature
	err := r.db.Where("uuid = ?", uuid).First(&feature).Error
	if err != nil {
		return nil, err
	}
	return &feature, nil
}

// GetAll retrieves the full feature catalog
func (r *featureRepository) GetAll() ([]models.Feature, error) {
	var features []models.Feature
	err := r.db.Order("name ASC").Find(&features).Error
	return features, err
}

// KeyExists checks whether a feature key is already taken
func (r *featureRepository) KeyExists(key string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Feature{}).Where("`key` = ?", key).Count(&count).Error
	return count > 0, err
}
