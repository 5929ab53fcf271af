package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/FolioTrack/foliotrack/internal/pkg/billing"
	"github.com/FolioTrack/foliotrack/internal/pkg/env"
)

const (
	// pendingSweepInterval controls how often the sweeper scans the database
	// for webhook events whose redis wake-up hint was lost.
	pendingSweepInterval = time.Minute
	// pendingSweepMinAge keeps the sweeper from racing freshly ingested
	// events that are already on their way through the queue.
	pendingSweepMinAge = time.Minute
	pendingSweepBatch  = 100
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue        *Queue
	sweepTicker  *time.Ticker
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 5
		if v, err := strconv.Atoi(env.GetEnv("JOBQUEUE_WORKERS", "")); err == nil && v > 0 {
			workerCount = v
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
		globalManager.queue.Register(JobTypeWebhookReconcile, ProcessWebhookReconcileJob)
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.sweepTicker = time.NewTicker(pendingSweepInterval)
	m.wg.Add(1)
	go m.pendingEventSweeper()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks")
	close(m.stopCh)
	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}
	m.running = false
	m.wg.Wait()
	m.queue.Stop()
}

// pendingEventSweeper re-enqueues webhook events that stayed pending because
// their enqueue hint never reached redis (crash between insert and push, or
// redis unavailable). Reconciliation is idempotent, so enqueuing a row twice
// is harmless.
func (m *Manager) pendingEventSweeper() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.sweepTicker.C:
			engine := billing.GetEngine()
			if engine == nil {
				continue
			}

			cutoff := time.Now().Add(-pendingSweepMinAge)
			events, err := engine.Repo.ListPendingWebhookEvents(cutoff, pendingSweepBatch)
			if err != nil {
				log.Errorf("[JobQueue Manager] Sweeper query failed: %v", err)
				continue
			}
			for _, ev := range events {
				log.Warnf("[JobQueue Manager] Re-enqueueing pending webhook event %d (%s)", ev.ID, ev.StripeEventID)
				EnqueueWebhookReconcile(ev.ID)
			}
		}
	}
}
