package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/FolioTrack/foliotrack/app/repository"
	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/cache"
	"github.com/FolioTrack/foliotrack/internal/pkg/database"
	"github.com/FolioTrack/foliotrack/internal/pkg/env"
	"github.com/FolioTrack/foliotrack/internal/pkg/jobqueue"
	"github.com/FolioTrack/foliotrack/internal/pkg/middleware"
	"github.com/FolioTrack/foliotrack/internal/pkg/router"
	"github.com/FolioTrack/foliotrack/internal/pkg/session"
)

func main() {
	app := NewApplication()

	jobqueue.GetManager().Start()
	defer jobqueue.GetManager().Stop()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	session.NewSessionStore()

	factory := repository.InitGlobalFactory(database.GetDB())
	billing.InitEngine(
		database.GetDB(),
		factory.GetUserRepository(),
		factory.GetPlanRepository(),
		billing.NewStripeClientFromEnv(),
		jobqueue.EnqueueWebhookReconcile,
	)

	app := fiber.New(fiber.Config{
		AppName:      "FolioTrack",
		ErrorHandler: middleware.ErrorHandler,
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
