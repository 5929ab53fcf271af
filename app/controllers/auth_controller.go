package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
	"github.com/FolioTrack/foliotrack/app/repository"
	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/session"
	"github.com/FolioTrack/foliotrack/internal/pkg/usercontext"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new user account and opens a session for it.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return &billing.ValidationError{Msg: "invalid request body"}
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email))); err == nil {
		return &billing.ValidationError{Msg: "email address already registered"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return &billing.ValidationError{Msg: err.Error()}
	}
	if err := repo.Create(user); err != nil {
		return err
	}

	if err := openSession(c, user); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleLogin authenticates a user and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return &billing.ValidationError{Msg: "invalid request body"}
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !models.CheckPasswordHash(req.Password, user.Password) {
		// Deliberately indistinct: never reveal whether the account exists.
		return &billing.AuthenticationError{Msg: "invalid credentials"}
	}
	if user.Status == models.STATUS_DISABLED {
		return &billing.AuthenticationError{Msg: "account disabled"}
	}

	if err := openSession(c, user); err != nil {
		return err
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = repo.Update(user)

	return c.JSON(user)
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.JSON(fiber.Map{"ok": true})
}

func openSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)

	return sess.Save()
}
