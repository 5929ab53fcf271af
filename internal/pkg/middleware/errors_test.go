package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
)

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &billing.ValidationError{Msg: "bad input"}, fiber.StatusBadRequest},
		{"not found", &billing.NotFoundError{Resource: "plan", ID: "7"}, fiber.StatusNotFound},
		{"authentication", &billing.AuthenticationError{Msg: "invalid credentials"}, fiber.StatusUnauthorized},
		{"webhook signature", &billing.SignatureError{Msg: "invalid webhook signature"}, fiber.StatusBadRequest},
		{"upstream", &billing.UpstreamError{Op: "subscription create", Err: errors.New("api down")}, fiber.StatusInternalServerError},
		{"conflict absorbed", &billing.ConflictError{Msg: "duplicate event"}, fiber.StatusOK},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/boom", func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if ct := resp.Header.Get("Content-Type"); ct != fiber.MIMEApplicationJSON {
				t.Errorf("content type = %q, want %q", ct, fiber.MIMEApplicationJSON)
			}
		})
	}
}

func TestErrorHandlerUnwrapsWrappedErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.Join(errors.New("context"), &billing.NotFoundError{Resource: "user", ID: "1"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
