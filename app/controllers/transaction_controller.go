package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
)

// HandleListTransactions returns a page of the caller's own transactions.
// Page and limit pass through verbatim.
func HandleListTransactions(c *fiber.Ctx) error {
	uc := currentUser(c)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	txns, err := repository.GetGlobalFactory().GetTransactionRepository().
		GetByUserID(uc.UserID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("failed to list transactions for user %d: %v", uc.UserID, err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load transactions")
	}
	if txns == nil {
		txns = []models.Transaction{}
	}

	return apiv1.Success(c, "Transactions retrieved", txns)
}

// HandleGetTransaction returns one of the caller's transactions.
func HandleGetTransaction(c *fiber.Ctx) error {
	uc := currentUser(c)

	txn, err := repository.GetGlobalFactory().GetTransactionRepository().GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Transaction not found")
		}
		log.Printf("failed to load transaction %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load transaction")
	}
	if txn.UserID != uc.UserID && !uc.IsAdmin {
		return apiv1.Error(c, apiv1.StatusNotFound, "Transaction not found")
	}

	return apiv1.Success(c, "Transaction retrieved", txn)
}
