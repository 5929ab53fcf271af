package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/FolioTrack/foliotrack/app/models"
)

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new portfolio repository instance
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) GetOrCreateByUser(userID uint) (*models.Portfolio, error) {
	var p models.Portfolio
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = models.Portfolio{UserID: userID}
	if err := r.db.Create(&p).Error; err != nil {
		// A concurrent request may have created it; the unique user_id index
		// makes exactly one create win.
		var existing models.Portfolio
		if ferr := r.db.Where("user_id = ?", userID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *portfolioRepository) Update(p *models.Portfolio) error {
	return r.db.Save(p).Error
}

func (r *portfolioRepository) CreateSnapshot(s *models.PortfolioSnapshot) error {
	return r.db.Create(s).Error
}

func (r *portfolioRepository) ListSnapshots(portfolioID uint, from, to time.Time, limit int) ([]models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot
	q := r.db.Where("portfolio_id = ?", portfolioID)
	if !from.IsZero() {
		q = q.Where("recorded_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("recorded_at <= ?", to)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("recorded_at ASC").Find(&snapshots).Error
	return snapshots, err
}

func (r *portfolioRepository) LatestSnapshot(portfolioID uint) (*models.PortfolioSnapshot, error) {
	var s models.PortfolioSnapshot
	if err := r.db.Where("portfolio_id = ?", portfolioID).Order("recorded_at DESC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
