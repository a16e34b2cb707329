package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
)

type featureRequest struct {
	Name              string `json:"name"`
	Key               string `json:"key"`
	Description       string `json:"description"`
	LimitType         string `json:"limitType"`
	DefaultLimitValue string `json:"defaultLimitValue"`
}

// HandleListFeatures returns the feature catalog.
func HandleListFeatures(c *fiber.Ctx) error {
	features, err := repository.GetGlobalFactory().GetFeatureRepository().GetAll()
	if err != nil {
		log.Printf("failed to list features: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load features")
	}
	if features == nil {
		features = []models.Feature{}
	}

	return apiv1.Success(c, "Features retrieved", features)
}

// HandleCreateFeature adds a feature to the catalog.
func HandleCreateFeature(c *fiber.Ctx) error {
	var req featureRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetFeatureRepository()
	if exists, err := repo.KeyExists(req.Key); err == nil && exists {
		return apiv1.Error(c, apiv1.StatusBadRequest, "A feature with this key already exists")
	}

	feature := models.Feature{
		UUID:              uuid.NewString(),
		Name:              req.Name,
		Key:               req.Key,
		Description:       req.Description,
		LimitType:         req.LimitType,
		DefaultLimitValue: req.DefaultLimitValue,
	}
	if feature.LimitType == "" {
		feature.LimitType = models.LimitTypeBoolean
	}
	if err := feature.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	if err := repo.Create(&feature); err != nil {
		log.Printf("failed to create feature: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not create feature")
	}

	return apiv1.Success(c, "Feature created", feature)
}
