package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FolioTrack/foliotrack/internal/pkg/session"
	"github.com/FolioTrack/foliotrack/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes session handling so controllers only read the context.
func UserContextMiddleware(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	authenticated, _ := sess.Get(usercontext.AuthKey).(bool)
	if !authenticated {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	username, _ := sess.Get(usercontext.KeyUsername).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	uid, ok := userID.(uint)
	if !ok {
		usercontext.SetUserContext(c, usercontext.UserContext{IsLoggedIn: false})
		return c.Next()
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     uid,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
	})
	return c.Next()
}

// RequireAPISessionAuth ensures a logged-in session for API routes and
// returns JSON 401 instead of a redirect.
func RequireAPISessionAuth(c *fiber.Ctx) error {
	if !usercontext.GetUserContext(c).IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}
