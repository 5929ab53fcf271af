package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
	"github.com/FolioTrack/foliotrack/app/repository"
	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/usercontext"
)

type snapshotRequest struct {
	TotalValue string `json:"total_value"`
	RecordedAt string `json:"recorded_at"`
	Note       string `json:"note"`
}

// HandleGetPortfolio returns the user's portfolio with its latest snapshot.
func HandleGetPortfolio(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalFactory().GetPortfolioRepository()
	portfolio, err := repo.GetOrCreateByUser(userCtx.UserID)
	if err != nil {
		return err
	}

	latest, err := repo.LatestSnapshot(portfolio.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return c.JSON(fiber.Map{
		"portfolio":       portfolio,
		"latest_snapshot": latest,
	})
}

// HandleCreateSnapshot records a portfolio value snapshot.
func HandleCreateSnapshot(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req snapshotRequest
	if err := c.BodyParser(&req); err != nil {
		return &billing.ValidationError{Msg: "invalid request body"}
	}

	value, err := decimal.NewFromString(req.TotalValue)
	if err != nil {
		return &billing.ValidationError{Msg: "total_value must be a decimal number"}
	}
	if value.IsNegative() {
		return &billing.ValidationError{Msg: "total_value must not be negative"}
	}

	recordedAt := time.Now()
	if req.RecordedAt != "" {
		recordedAt, err = time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			return &billing.ValidationError{Msg: "recorded_at must be RFC3339"}
		}
	}

	repo := repository.GetGlobalFactory().GetPortfolioRepository()
	portfolio, err := repo.GetOrCreateByUser(userCtx.UserID)
	if err != nil {
		return err
	}

	snapshot := &models.PortfolioSnapshot{
		PortfolioID: portfolio.ID,
		TotalValue:  value,
		RecordedAt:  recordedAt,
		Note:        req.Note,
	}
	if err := repo.CreateSnapshot(snapshot); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

// HandleListSnapshots returns the portfolio's value history, optionally
// bounded by from/to query parameters (RFC3339).
func HandleListSnapshots(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return &billing.ValidationError{Msg: "from must be RFC3339"}
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return &billing.ValidationError{Msg: "to must be RFC3339"}
		}
	}
	limit := c.QueryInt("limit", 0)

	repo := repository.GetGlobalFactory().GetPortfolioRepository()
	portfolio, err := repo.GetOrCreateByUser(userCtx.UserID)
	if err != nil {
		return err
	}

	snapshots, err := repo.ListSnapshots(portfolio.ID, from, to, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"snapshots": snapshots})
}
