package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestUserContextRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if uc := GetUserContext(c); uc.IsLoggedIn {
			t.Error("fresh request must default to an anonymous context")
		}

		SetUserContext(c, UserContext{UserID: 7, Username: "ada", IsLoggedIn: true})

		uc := GetUserContext(c)
		if uc.UserID != 7 || uc.Username != "ada" || !uc.IsLoggedIn {
			t.Errorf("unexpected context after set: %+v", uc)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
