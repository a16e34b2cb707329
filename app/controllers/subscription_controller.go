package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
	"github.com/walleyjs/threls-billing/internal/pkg/entitlements"
	"github.com/walleyjs/threls-billing/internal/pkg/webhookqueue"
)

type createSubscriptionRequest struct {
	PlanID          string `json:"planId"`
	PaymentMethodID string `json:"paymentMethodId"`
}

// currentSubscriptionResponse decorates the subscription with the effective
// feature entitlements resolved from its plan.
type currentSubscriptionResponse struct {
	*models.Subscription
	Entitlements entitlements.Set `json:"entitlements"`
}

// HandleGetCurrentSubscription returns the caller's current subscription.
func HandleGetCurrentSubscription(c *fiber.Ctx) error {
	uc := currentUser(c)

	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetCurrentByUserID(uc.UserID)
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "No active subscription found")
		}
		log.Printf("failed to load subscription for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load subscription")
	}

	return apiv1.Success(c, "Subscription retrieved", currentSubscriptionResponse{
		Subscription: sub,
		Entitlements: entitlements.Resolve(sub.Plan),
	})
}

// HandleCreateSubscription subscribes the caller to a plan. The payment
// capture itself runs in the payment pipeline; here the subscription record
// is created in its starting status.
func HandleCreateSubscription(c *fiber.Ctx) error {
	uc := currentUser(c)

	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}
	if req.PlanID == "" {
		return apiv1.Error(c, apiv1.StatusBadRequest, "planId is required")
	}

	factory := repository.GetGlobalFactory()
	plan, err := factory.GetPlanRepository().GetByUUID(req.PlanID)
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Plan not found")
		}
		log.Printf("failed to load plan %s: %v", req.PlanID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load plan")
	}
	if !plan.IsActive {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Plan is not available")
	}

	subRepo := factory.GetSubscriptionRepository()
	if existing, err := subRepo.GetCurrentByUserID(uc.UserID); err == nil && existing.IsEntitling() {
		return apiv1.Error(c, apiv1.StatusBadRequest, "An active subscription already exists")
	}

	paymentLabel := ""
	if req.PaymentMethodID != "" {
		method, err := factory.GetPaymentMethodRepository().GetByUUID(req.PaymentMethodID)
		if err != nil || method.UserID != uc.UserID {
			return apiv1.Error(c, apiv1.StatusBadRequest, "Unknown payment method")
		}
		paymentLabel = method.Details.Brand + " •••• " + method.Details.Last4
	}

	status := models.SubscriptionStatusActive
	if plan.TrialPeriodDays > 0 {
		status = models.SubscriptionStatusTrial
	}

	sub := models.Subscription{
		UUID:          uuid.NewString(),
		UserID:        uc.UserID,
		PlanID:        plan.ID,
		Status:        status,
		PaymentMethod: paymentLabel,
	}
	if err := subRepo.Create(&sub); err != nil {
		log.Printf("failed to create subscription for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not create subscription")
	}

	openInvoice(factory.GetTransactionRepository(), &sub, plan)

	created, err := subRepo.GetByUUID(sub.UUID)
	if err != nil {
		webhookqueue.Publish(uc.UserID, models.EventSubscriptionCreated, sub)
		return apiv1.Success(c, "Subscription created", sub)
	}
	webhookqueue.Publish(uc.UserID, models.EventSubscriptionCreated, created)
	return apiv1.Success(c, "Subscription created", created)
}

// HandleCancelSubscription flags the caller's subscription for cancellation
// at period end. Cancelling twice is a no-op.
func HandleCancelSubscription(c *fiber.Ctx) error {
	uc := currentUser(c)

	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	sub, err := repo.GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Subscription not found")
		}
		log.Printf("failed to load subscription %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load subscription")
	}
	if sub.UserID != uc.UserID && !uc.IsAdmin {
		return apiv1.Error(c, apiv1.StatusForbidden, "Subscription belongs to another account")
	}

	sub.Cancel(time.Now())
	if err := repo.Update(sub); err != nil {
		log.Printf("failed to cancel subscription %s: %v", sub.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not cancel subscription")
	}

	webhookqueue.Publish(sub.UserID, models.EventSubscriptionCanceled, sub)
	return apiv1.Success(c, "Subscription canceled", sub)
}

// openInvoice records the opening charge of a paid subscription as a pending
// transaction. The payment pipeline settles it; failure here never blocks the
// subscription itself.
func openInvoice(repo repository.TransactionRepository, sub *models.Subscription, plan *models.Plan) {
	if plan.Price <= 0 || sub.Status != models.SubscriptionStatusActive {
		return
	}

	now := time.Now()
	seq, err := repo.NextInvoiceSequence()
	if err == nil {
		err = repo.Create(&models.Transaction{
			UUID:           uuid.NewString(),
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			InvoiceNumber:  models.NewInvoiceNumber(now, seq),
			Amount:         plan.Price,
			Currency:       plan.Currency,
			Status:         models.TransactionStatusPending,
			Description:    "Subscription to " + plan.Name,
		})
	}
	if err != nil {
		log.Printf("failed to open invoice for subscription %s: %v", sub.UUID, err)
	}
}
