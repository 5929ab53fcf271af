package billing

import (
	"sync"

	"gorm.io/gorm"
)

// Processor bundles the two processor-facing capabilities the engine needs.
// StripeClient implements both.
type Processor interface {
	ProcessorClient
	EventVerifier
}

// Engine bundles the three billing components around one shared lock table
// and one repository. The intent manager and the reconciler share the lock
// table so a user retrying subscription creation and a webhook for the same
// subscription serialize instead of racing.
type Engine struct {
	Repo       Repository
	Intent     *IntentManager
	Pipeline   *Pipeline
	Reconciler *Reconciler
}

var (
	engine     *Engine
	engineOnce sync.Once
)

// NewEngine assembles a billing engine. notify may be nil.
func NewEngine(db *gorm.DB, users UserStore, plans PlanStore, processor Processor, notify NotifyFunc) *Engine {
	repo := NewRepository(db)
	locks := newKeyedMutex()

	return &Engine{
		Repo:       repo,
		Intent:     NewIntentManager(repo, users, plans, processor, locks),
		Pipeline:   NewPipeline(processor, repo, notify),
		Reconciler: NewReconciler(repo, locks),
	}
}

// InitEngine installs the process-wide engine. Called once from main before
// the router starts serving.
func InitEngine(db *gorm.DB, users UserStore, plans PlanStore, processor Processor, notify NotifyFunc) *Engine {
	engineOnce.Do(func() {
		engine = NewEngine(db, users, plans, processor, notify)
	})
	return engine
}

// GetEngine returns the process-wide engine installed by InitEngine.
func GetEngine() *Engine {
	return engine
}
