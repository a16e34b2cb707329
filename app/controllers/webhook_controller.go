package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
)

// webhookRequest is the mutable surface of a webhook subscription. Fields
// left out of an update keep their stored value; the record is still
// validated and written as a whole.
type webhookRequest struct {
	URL      string                 `json:"url"`
	Secret   string                 `json:"secret"`
	Events   models.WebhookEventSet `json:"events"`
	IsActive *bool                  `json:"isActive"`
}

type webhookListResponse struct {
	Data []models.Webhook `json:"data"`
}

// HandleListWebhooks returns the webhooks of the authenticated account.
func HandleListWebhooks(c *fiber.Ctx) error {
	uc := currentUser(c)

	webhooks, err := repository.GetGlobalFactory().GetWebhookRepository().GetByUserID(uc.UserID)
	if err != nil {
		log.Printf("failed to list webhooks for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load webhooks")
	}
	if webhooks == nil {
		webhooks = []models.Webhook{}
	}

	return apiv1.Success(c, "Webhooks retrieved", webhookListResponse{Data: webhooks})
}

// HandleCreateWebhook registers a new webhook subscription. A secret is
// generated when the caller leaves it blank.
func HandleCreateWebhook(c *fiber.Ctx) error {
	uc := currentUser(c)

	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	webhook := models.Webhook{
		UUID:     uuid.NewString(),
		UserID:   uc.UserID,
		URL:      req.URL,
		Secret:   req.Secret,
		Events:   req.Events.Normalize(),
		IsActive: true,
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}
	if err := webhook.EnsureSecret(); err != nil {
		log.Printf("failed to generate webhook secret: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not generate webhook secret")
	}
	if err := webhook.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	if err := repository.GetGlobalFactory().GetWebhookRepository().Create(&webhook); err != nil {
		log.Printf("failed to create webhook for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not create webhook")
	}

	return apiv1.Success(c, "Webhook created", webhook)
}

// HandleGetWebhook returns a single webhook owned by the caller.
func HandleGetWebhook(c *fiber.Ctx) error {
	uc := currentUser(c)

	webhook, err := repository.GetGlobalFactory().GetWebhookRepository().GetByUUIDAndUserID(c.Params("id"), uc.UserID)
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Webhook not found")
		}
		log.Printf("failed to load webhook %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load webhook")
	}

	return apiv1.Success(c, "Webhook retrieved", webhook)
}

// HandleUpdateWebhook replaces the mutable fields of a webhook as one
// record. Owner, identifiers and delivery bookkeeping are untouchable.
func HandleUpdateWebhook(c *fiber.Ctx) error {
	uc := currentUser(c)

	repo := repository.GetGlobalFactory().GetWebhookRepository()
	webhook, err := repo.GetByUUIDAndUserID(c.Params("id"), uc.UserID)
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Webhook not found")
		}
		log.Printf("failed to load webhook %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load webhook")
	}

	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}

	// Full-record replace: url and events must be resubmitted and are
	// validated as a whole. Omitting the secret keeps the stored one so the
	// record never loses it; omitting isActive keeps the current flag.
	webhook.URL = req.URL
	if req.Secret != "" {
		webhook.Secret = req.Secret
	}
	webhook.Events = req.Events.Normalize()
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}

	if err := webhook.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	if err := repo.Update(webhook); err != nil {
		log.Printf("failed to update webhook %s: %v", webhook.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not update webhook")
	}

	return apiv1.Success(c, "Webhook updated", webhook)
}

// HandleDeleteWebhook removes a webhook permanently.
func HandleDeleteWebhook(c *fiber.Ctx) error {
	uc := currentUser(c)

	repo := repository.GetGlobalFactory().GetWebhookRepository()
	webhook, err := repo.GetByUUIDAndUserID(c.Params("id"), uc.UserID)
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Webhook not found")
		}
		log.Printf("failed to load webhook %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load webhook")
	}

	if err := repo.Delete(webhook.ID); err != nil {
		log.Printf("failed to delete webhook %s: %v", webhook.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not delete webhook")
	}

	return apiv1.Success(c, "Webhook deleted", nil)
}
