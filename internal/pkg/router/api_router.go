package router

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/walleyjs/threls-billing/app/controllers"
	"github.com/walleyjs/threls-billing/internal/pkg/cache"
	"github.com/walleyjs/threls-billing/internal/pkg/env"
	"github.com/walleyjs/threls-billing/internal/pkg/middleware"
	"github.com/walleyjs/threls-billing/internal/pkg/token"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Storage: newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Threls billing API",
		})
	})

	v1 := api.Group("/v1")

	// Public session routes; everything after the Use requires a bearer token
	v1.Post("/login", controllers.HandleLogin)
	v1.Post("/register", controllers.HandleRegister)
	v1.Post("/logout", controllers.HandleLogout)

	tokens := token.NewServiceFromEnv()
	controllers.SetTokenService(tokens)
	v1.Use(middleware.BearerAuth(tokens))

	// Customer area
	v1.Get("/subscription/current", controllers.HandleGetCurrentSubscription)
	v1.Post("/subscription", controllers.HandleCreateSubscription)
	v1.Post("/subscription/:id/cancel", controllers.HandleCancelSubscription)

	v1.Get("/plans", controllers.HandleListPlans)
	v1.Get("/features", controllers.HandleListFeatures)

	v1.Get("/payment-methods", controllers.HandleListPaymentMethods)
	v1.Post("/payment-methods", controllers.HandleAddPaymentMethod)
	v1.Post("/payment-methods/:id/default", controllers.HandleSetDefaultPaymentMethod)

	v1.Get("/transactions", controllers.HandleListTransactions)
	v1.Get("/transactions/:id", controllers.HandleGetTransaction)

	v1.Get("/webhooks", controllers.HandleListWebhooks)
	v1.Post("/webhooks", controllers.HandleCreateWebhook)
	v1.Get("/webhooks/:id", controllers.HandleGetWebhook)
	v1.Put("/webhooks/:id", controllers.HandleUpdateWebhook)
	v1.Delete("/webhooks/:id", controllers.HandleDeleteWebhook)

	// Catalog management is admin-only even though reads are public to
	// authenticated customers
	v1.Post("/plans", middleware.RequireAdmin, controllers.HandleCreatePlan)
	v1.Put("/plans/:id", middleware.RequireAdmin, controllers.HandleUpdatePlan)
	v1.Delete("/plans/:id", middleware.RequireAdmin, controllers.HandleDeletePlan)
	v1.Post("/features", middleware.RequireAdmin, controllers.HandleCreateFeature)

	// Admin area
	admin := v1.Group("/admin", middleware.RequireAdmin)
	admin.Get("/dashboard/stats", controllers.HandleAdminDashboardStats)
	admin.Get("/subscribers", controllers.HandleAdminListSubscribers)
	admin.Get("/subscribers/:id", controllers.HandleAdminGetSubscriber)
	admin.Get("/transactions", controllers.HandleAdminListTransactions)
	admin.Get("/transactions/:id", controllers.HandleAdminGetTransaction)
}

// newLimiterStorage backs the rate limiter with the shared Redis instance so
// limits hold across replicas. Database 1 keeps limiter keys away from the
// stats cache.
func newLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
