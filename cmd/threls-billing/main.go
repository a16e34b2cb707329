package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/walleyjs/threls-billing/app/repository"
	"github.com/walleyjs/threls-billing/internal/pkg/cache"
	"github.com/walleyjs/threls-billing/internal/pkg/database"
	"github.com/walleyjs/threls-billing/internal/pkg/env"
	"github.com/walleyjs/threls-billing/internal/pkg/router"
	"github.com/walleyjs/threls-billing/internal/pkg/webhookqueue"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	cache.SetupCache()
	webhookqueue.GetManager().Start()

	// Resolve the project root so the binary works from cmd/threls-billing
	// as well as from the repository root.
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	app := fiber.New(fiber.Config{
		AppName: "threls-billing",
	})
	app.Use(recover.New(), logger.New())

	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
