package controllers

import (
	"encoding/json"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	apiv1 "github.com/walleyjs/threls-billing/internal/api/v1"
	"github.com/walleyjs/threls-billing/internal/pkg/cache"
)

const (
	dashboardStatsCacheKey = "admin:dashboard:stats"
	dashboardStatsCacheTTL = 60 * time.Second
)

// subscriberView is the admin-facing projection of a customer account and
// its subscription.
type subscriberView struct {
	ID           string               `json:"_id"`
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Plan         string               `json:"plan"`
	Subscription *models.Subscription `json:"subscription"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type subscriberListResponse struct {
	Data []subscriberView `json:"data"`
}

type subscriberDetailResponse struct {
	User         *models.User         `json:"user"`
	Subscription *models.Subscription `json:"subscription"`
	Transactions []models.Transaction `json:"transactions"`
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type adminTransactionListResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination   pagination           `json:"pagination"`
}

// HandleAdminDashboardStats returns the aggregate counters shown on the
// admin dashboard. The aggregate is cached briefly since every admin page
// load requests it.
func HandleAdminDashboardStats(c *fiber.Ctx) error {
	if cached, err := cache.Get(dashboardStatsCacheKey); err == nil && cached != "" {
		var stats repository.DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return apiv1.Success(c, "Dashboard stats retrieved", stats)
		}
	}

	stats, err := computeDashboardStats()
	if err != nil {
		log.Printf("failed to compute dashboard stats: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load dashboard stats")
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := cache.Set(dashboardStatsCacheKey, payload, dashboardStatsCacheTTL); err != nil {
			log.Printf("failed to cache dashboard stats: %v", err)
		}
	}

	return apiv1.Success(c, "Dashboard stats retrieved", stats)
}

func computeDashboardStats() (repository.DashboardStats, error) {
	factory := repository.GetGlobalFactory()
	subRepo := factory.GetSubscriptionRepository()

	var stats repository.DashboardStats
	var err error

	if stats.TotalSubscribers, err = subRepo.Count(); err != nil {
		return stats, err
	}
	if stats.ActiveSubscribers, err = subRepo.CountByStatus(models.SubscriptionStatusActive); err != nil {
		return stats, err
	}
	if stats.PastDueSubscribers, err = subRepo.CountByStatus(models.SubscriptionStatusPastDue); err != nil {
		return stats, err
	}
	if stats.TrialSubscribers, err = subRepo.CountByStatus(models.SubscriptionStatusTrial); err != nil {
		return stats, err
	}
	if stats.TotalRevenue, err = factory.GetTransactionRepository().SumAmountByStatus(models.TransactionStatusPaid); err != nil {
		return stats, err
	}
	if stats.SubscriptionPlans, err = factory.GetPlanRepository().Count(); err != nil {
		return stats, err
	}

	return stats, nil
}

// HandleAdminListSubscribers returns every subscriber with their current
// subscription. Search and status filtering happen client-side.
func HandleAdminListSubscribers(c *fiber.Ctx) error {
	subs, err := repository.GetGlobalFactory().GetSubscriptionRepository().ListWithUsers()
	if err != nil {
		log.Printf("failed to list subscribers: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load subscribers")
	}

	views := make([]subscriberView, 0, len(subs))
	for i := range subs {
		sub := subs[i]
		if sub.User == nil {
			continue
		}
		view := subscriberView{
			ID:           sub.User.UUID,
			Name:         sub.User.Name,
			Email:        sub.User.Email,
			Subscription: &sub,
			CreatedAt:    sub.User.CreatedAt,
		}
		if sub.Plan != nil {
			view.Plan = sub.Plan.Name
		}
		views = append(views, view)
	}

	return apiv1.Success(c, "Subscribers retrieved", subscriberListResponse{Data: views})
}

// HandleAdminGetSubscriber returns a subscriber's account, subscription and
// transaction history.
func HandleAdminGetSubscriber(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()

	user, err := factory.GetUserRepository().GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Subscriber not found")
		}
		log.Printf("failed to load subscriber %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load subscriber")
	}

	detail := subscriberDetailResponse{User: user, Transactions: []models.Transaction{}}
	if sub, err := factory.GetSubscriptionRepository().GetCurrentByUserID(user.ID); err == nil {
		detail.Subscription = sub
	}
	if txns, err := factory.GetTransactionRepository().GetByUserID(user.ID, 0, 50); err == nil && txns != nil {
		detail.Transactions = txns
	}

	return apiv1.Success(c, "Subscriber retrieved", detail)
}

// HandleAdminListTransactions returns a filtered, paginated transaction
// list. Filters pass through to the repository verbatim.
func HandleAdminListTransactions(c *fiber.Ctx) error {
	params := repository.TransactionListParams{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	txns, total, err := repository.GetGlobalFactory().GetTransactionRepository().List(params)
	if err != nil {
		log.Printf("failed to list transactions: %v", err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load transactions")
	}
	if txns == nil {
		txns = []models.Transaction{}
	}

	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	if totalPages < 1 {
		totalPages = 1
	}

	return apiv1.Success(c, "Transactions retrieved", adminTransactionListResponse{
		Transactions: txns,
		Pagination: pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// HandleAdminGetTransaction returns any transaction by public id.
func HandleAdminGetTransaction(c *fiber.Ctx) error {
	txn, err := repository.GetGlobalFactory().GetTransactionRepository().GetByUUID(c.Params("id"))
	if err != nil {
		if isNotFound(err) {
			return apiv1.Error(c, apiv1.StatusNotFound, "Transaction not found")
		}
		log.Printf("failed to load transaction %s: %v", c.Params("id"), err)
		return apiv1.Error(c, apiv1.StatusInternal, "Could not load transaction")
	}

	return apiv1.Success(c, "Transaction retrieved", txn)
}
