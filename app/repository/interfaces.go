package repository

import (
	"time"

	"github.com/FolioTrack/foliotrack/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// PlanRepository defines the interface for plan catalog operations
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetBySlug(slug string) (*models.Plan, error)
	ListActive() ([]models.Plan, error)
}

// PortfolioRepository defines the interface for portfolio-related database operations
type PortfolioRepository interface {
	GetOrCreateByUser(userID uint) (*models.Portfolio, error)
	Update(p *models.Portfolio) error
	CreateSnapshot(s *models.PortfolioSnapshot) error
	ListSnapshots(portfolioID uint, from, to time.Time, limit int) ([]models.PortfolioSnapshot, error)
	LatestSnapshot(portfolioID uint) (*models.PortfolioSnapshot, error)
}
