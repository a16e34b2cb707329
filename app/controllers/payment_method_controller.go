package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
)

// addPaymentMethodRequest carries the submitted card. Only derived display
// fields are kept; the card number itself is dropped after the last four
// digits are extracted.
type addPaymentMethodRequest struct {
	Type    string `json:"type"`
	Details struct {
		Brand       string `json:"type"`
		CardNumber  string `json:"cardNumber"`
		ExpiryMonth int    `json:"expiryMonth"`
		ExpiryYear  int    `json:"expiryYear"`
	} `json:"details"`
	IsDefault bool `json:"isDefault"`
}

// HandleListPaymentMethods returns the caller's stored payment methods.
func HandleListPaymentMethods(c *fiber.Ctx) error {
	uc := currentUser(c)

	methods, err := repository.GetGlobalFactory().GetPaymentMethodRepository().GetByUserID(uc.UserID)
	if err != nil {
		log.Printf("failed to list payment methods for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load payment methods")
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}

	return apiv1.Success(c, "Payment methods retrieved", methods)
}

// HandleAddPaymentMethod stores a new payment method for the caller.
func HandleAddPaymentMethod(c *fiber.Ctx) error {
	uc := currentUser(c)

	var req addPaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Invalid request body")
	}
	if req.Details.CardNumber == "" {
		return apiv1.Error(c, apiv1.StatusBadRequest, "Card number is required")
	}

	method := models.PaymentMethod{
		UUID:   uuid.NewString(),
		UserID: uc.UserID,
		Type:   "card",
		Details: models.PaymentMethodDetails{
			Brand:       req.Details.Brand,
			Last4:       models.Last4FromCardNumber(req.Details.CardNumber),
			ExpiryMonth: req.Details.ExpiryMonth,
			ExpiryYear:  req.Details.ExpiryYear,
		},
		IsDefault: req.IsDefault,
	}
	if err := method.Validate(); err != nil {
		return apiv1.Error(c, apiv1.StatusBadRequest, err.Error())
	}

	if err := repository.GetGlobalFactory().GetPaymentMethodRepository().Create(&method); err != nil {
		log.Printf("failed to add payment method for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not add payment method")
	}

	return apiv1.Success(c, "Payment method added", method)
}

// HandleSetDefaultPaymentMethod makes one stored method the default.
func HandleSetDefaultPaymentMethod(c *fiber.Ctx) error {
	uc := currentUser(c)

	repo := repository.GetGlobalFactory().GetPaymentMethodRepository()
	method, err := repo.GetByUUID(c.Params("id"))
	if err != nil || method.UserID != uc.UserID {
		return apiv1.Error(c, apiv1.StatusNotFound, "Payment method not found")
	}

	if err := repo.SetDefault(uc.UserID, method.ID); err != nil {
		log.Printf("failed to set default payment method %s: %v", method.UUID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not update payment method")
	}

	return apiv1.Success(c, "Default payment method updated", nil)
}
