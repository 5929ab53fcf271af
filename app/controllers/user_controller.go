package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
	"github.com/FolioTrack/foliotrack/app/repository"
	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/usercontext"
	"github.com/FolioTrack/foliotrack/internal/pkg/utils"
)

type profilePatchRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type profileResponse struct {
	*models.User
	AvatarURL string `json:"avatar_url"`
}

func newProfileResponse(user *models.User) profileResponse {
	return profileResponse{
		User:      user,
		AvatarURL: utils.GravatarURL(user.Email, 200),
	}
}

// HandleGetProfile returns the authenticated user's account.
func HandleGetProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &billing.NotFoundError{Resource: "user", ID: strconv.FormatUint(uint64(userCtx.UserID), 10)}
		}
		return err
	}
	return c.JSON(newProfileResponse(user))
}

// HandleUpdateProfile applies a partial update to the authenticated user.
func HandleUpdateProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req profilePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return &billing.ValidationError{Msg: "invalid request body"}
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &billing.NotFoundError{Resource: "user", ID: strconv.FormatUint(uint64(userCtx.UserID), 10)}
		}
		return err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if err := user.Validate(); err != nil {
		return &billing.ValidationError{Msg: err.Error()}
	}
	if err := repo.Update(user); err != nil {
		return err
	}
	return c.JSON(newProfileResponse(user))
}
