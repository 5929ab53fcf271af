package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
)

// ErrorHandler translates the billing error taxonomy into uniform JSON error
// responses. Controllers return errors unchanged instead of hand-rolling
// status codes per handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		validationErr *billing.ValidationError
		notFoundErr   *billing.NotFoundError
		authErr       *billing.AuthenticationError
		signatureErr  *billing.SignatureError
		upstreamErr   *billing.UpstreamError
		conflictErr   *billing.ConflictError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": validationErr.Msg})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFoundErr.Error()})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": authErr.Msg})
	case errors.As(err, &signatureErr):
		// Signature failures on the webhook route must come back 400 so the
		// processor does not retry a delivery that will never authenticate.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": signatureErr.Msg})
	case errors.As(err, &upstreamErr):
		log.Errorf("[HTTP] upstream failure on %s: %v", c.Path(), upstreamErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "payment processor unavailable"})
	case errors.As(err, &conflictErr):
		// Stale/duplicate conditions are absorbed, not surfaced.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": conflictErr.Msg})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	default:
		log.Errorf("[HTTP] unexpected error on %s: %v", c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal server error"})
	}
}
