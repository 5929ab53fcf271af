package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/FolioTrack/foliotrack/app/repository"
)

// HandleListPlans returns the active pricing plans.
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListActive()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"plans": plans})
}
