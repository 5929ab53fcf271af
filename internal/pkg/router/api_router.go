package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/FolioTrack/foliotrack/app/controllers"
	"github.com/FolioTrack/foliotrack/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), middleware.UserContextMiddleware)

	v1 := api.Group("/v1")

	// Auth
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/auth/logout", controllers.HandleLogout)

	// Plans (public)
	v1.Get("/plans", controllers.HandleListPlans)

	// Authenticated routes
	user := v1.Group("/user", middleware.RequireAPISessionAuth)
	user.Get("/profile", controllers.HandleGetProfile)
	user.Patch("/profile", controllers.HandleUpdateProfile)

	portfolio := v1.Group("/portfolio", middleware.RequireAPISessionAuth)
	portfolio.Get("/", controllers.HandleGetPortfolio)
	portfolio.Post("/snapshots", controllers.HandleCreateSnapshot)
	portfolio.Get("/snapshots", controllers.HandleListSnapshots)

	billingGroup := v1.Group("/billing", middleware.RequireAPISessionAuth)
	billingGroup.Post("/subscriptions", controllers.HandleCreateSubscription)
	billingGroup.Get("/subscription", controllers.HandleGetSubscription)
	billingGroup.Get("/payments", controllers.HandleListPayments)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
