package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
)

type planFeatureInput struct {
	FeatureID  string `json:"featureId"`
	LimitValue string `json:"limitValue"`
}

type planRequest struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Price           float64            `json:"price"`
	Currency        string             `json:"currency"`
	BillingCycle    string             `json:"billingCycle"`
	TrialPeriodDays int                `json:"trialPeriodDays"`
	IsActive        *bool              `json:"isActive"`
	Features        []planFeatureInput `json:"features"`
}

// HandleListPlans returns every plan. Customers see only active plans;
// administrators see the full catalog.
func HandleListPlans(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPlanRepository()

	var (
		plans []models.Plan
		err   error
	)
	if currentUser(c).IsAdmin {
		plans, err = repo.GetAll()
	} else {
		plans, err = repo.GetActive()
	}
	if err != nil {
		log.Printf("failed to list plans: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load plans")
	}
	if plans == nil {
		plans = []models.Plan{}
	}

	return apiv1.Success(c, "Plans retrieved", plans)
}

// HandleCreatePlan creates a plan together with its feature limits.
func HandleCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	plan := models.Plan{
		UUID:            uuid.NewString(),
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Currency:        req.Currency,
		BillingCycle:    req.BillingCycle,
		TrialPeriodDays: req.TrialPeriodDays,
		IsActive:        true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if plan.BillingCycle == "" {
		plan.BillingCycle = models.BillingCycleMonthly
	}
	if err := plan.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	features, err := resolvePlanFeatures(req.Features)
	if err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}
	plan.Features = features

	if err := repository.GetGlobalFactory().GetPlanRepository().Create(&plan); err != nil {
		log.Printf("failed to create plan: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not create plan")
	}

	return apiv1.Success(c, "Plan created", plan)
}

// HandleUpdatePlan updates a plan and replaces its feature limits.
func HandleUpdatePlan(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Plan not found")
		}
		log.Printf("failed to load plan %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load plan")
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	if req.Name != "" {
		plan.Name = req.Name
	}
	plan.Description = req.Description
	plan.Price = req.Price
	if req.Currency != "" {
		plan.Currency = req.Currency
	}
	if req.BillingCycle != "" {
		plan.BillingCycle = req.BillingCycle
	}
	plan.TrialPeriodDays = req.TrialPeriodDays
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if err := plan.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	if err := repo.Update(plan); err != nil {
		log.Printf("failed to update plan %s: %v", plan.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not update plan")
	}

	if req.Features != nil {
		features, err := resolvePlanFeatures(req.Features)
		if err != nil {
			return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
		}
		if err := repo.ReplaceFeatures(plan.ID, features); err != nil {
			log.Printf("failed to replace features for plan %s: %v", plan.UUID, err)
			return apiv1.Error(c, apiv1.StatusInternal, "Could not update plan features")
		}
	}

	updated, err := repo.GetByID(plan.ID)
	if err != nil {
		return apiv1.Success(c, "Plan updated", plan)
	}
	return apiv1.Success(c, "Plan updated", updated)
}

// HandleDeletePlan removes a plan from the catalog.
func HandleDeletePlan(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPlanRepository()
	plan, err := repo.GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Plan not found")
		}
		log.Printf("failed to load plan %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load plan")
	}

	if err := repo.Delete(plan.ID); err != nil {
		log.Printf("failed to delete plan %s: %v", plan.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not delete plan")
	}

	return apiv1.Success(c, "Plan deleted", nil)
}

// resolvePlanFeatures maps feature UUIDs from the request to catalog rows.
func resolvePlanFeatures(inputs []planFeatureInput) ([]models.PlanFeature, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	featureRepo := repository.GetGlobalFactory().GetFeatureRepository()
	features := make([]models.PlanFeature, 0, len(inputs))
	for _, in := range inputs {
		feature, err := featureRepo.GetByUUID(in.FeatureID)
		if err != nil {
			return nil, fmt.Errorf("unknown feature: %s", in.FeatureID)
		}
		features = append(features, models.PlanFeature{
			FeatureID:  feature.ID,
			LimitValue: in.LimitValue,
		})
	}
	return features, nil
}
