package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances
type Repositories struct {
	User      UserRepository
	Plan      PlanRepository
	Portfolio PortfolioRepository
}

// NewRepositories creates all repositories from one DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Plan:      NewPlanRepository(db),
		Portfolio: NewPortfolioRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetPlanRepository returns the plan repository instance
func (f *Factory) GetPlanRepository() PlanRepository {
	return f.GetRepositories().Plan
}

// GetPortfolioRepository returns the portfolio repository instance
func (f *Factory) GetPortfolioRepository() PortfolioRepository {
	return f.GetRepositories().Portfolio
}

var (
	globalFactory     *Factory
	globalFactoryOnce sync.Once
)

// InitGlobalFactory installs the process-wide factory
func InitGlobalFactory(db *gorm.DB) *Factory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
	return globalFactory
}

// GetGlobalFactory returns the process-wide factory
func GetGlobalFactory() *Factory {
	return globalFactory
}
