package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FolioTrack/foliotrack/app/controllers"
)

// WebhookRouter installs processor webhook routes. These sit outside the /api
// group: no session middleware, no rate limiter — authenticity comes from the
// signature check and retries are the processor's delivery mechanism.
type WebhookRouter struct {
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
