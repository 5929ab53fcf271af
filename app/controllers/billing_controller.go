package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/usercontext"
)

type createSubscriptionRequest struct {
	PlanID uint `json:"plan_id"`
}

// HandleCreateSubscription creates (or idempotently retrieves) the user's
// subscription intent. The client confirms the returned client secret via the
// processor's JS SDK; activation arrives later through the webhook pipeline.
func HandleCreateSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return &billing.ValidationError{Msg: "invalid request body"}
	}
	if req.PlanID == 0 {
		return &billing.ValidationError{Msg: "plan_id is required"}
	}

	intent, err := billing.GetEngine().Intent.CreateOrGetSubscription(c.Context(), userCtx.UserID, req.PlanID)
	if err != nil {
		return err
	}
	return c.JSON(intent)
}

// HandleGetSubscription returns the user's current subscription state.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sub, err := billing.GetEngine().Repo.GetOpenSubscriptionByUser(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"subscription": nil})
		}
		return err
	}
	return c.JSON(fiber.Map{"subscription": sub})
}

// HandleListPayments returns the user's payment history.
func HandleListPayments(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	payments, err := billing.GetEngine().Repo.ListPaymentsByUser(userCtx.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// HandleStripeWebhook ingests one processor notification. Signature failures
// come back 400 with no state written; persistence failures come back 5xx so
// the processor redelivers; duplicates and unknown types are acknowledged so
// the processor stops retrying them.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	result, err := billing.GetEngine().Pipeline.Ingest(c.Context(), rawBody, signature)
	if err != nil {
		return err
	}

	resp := fiber.Map{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	if result.Ignored {
		resp["ignored"] = true
	}
	return c.JSON(resp)
}
