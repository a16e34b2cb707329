package webhookqueue

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/walleyjs/threls-billing/app/models"
	"github.com/walleyjs/threls-billing/app/repository"
	"github.com/walleyjs/threls-billing/internal/pkg/env"
	counter "github.com/walleyjs/threls-billing/internal/pkg/metrics/counter"
)

// Manager manages the delivery queue and its background tasks
type Manager struct {
	queue              *Queue
	counterFlushTicker *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global delivery manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := env.GetEnvInt("WEBHOOK_WORKERS", 3)
		if workerCount <= 0 {
			workerCount = 3
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed delivery queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the delivery queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[WebhookQueue Manager] Starting delivery queue and background tasks")

	m.queue.Start()

	// Flush delivery counters (Redis -> DB) every 5 seconds
	m.counterFlushTicker = time.NewTicker(5 * time.Second)
	m.wg.Add(1)
	go m.counterFlushWorker()
}

// Stop stops the delivery queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[WebhookQueue Manager] Stopping...")
	close(m.stopCh)
	m.running = false

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}

	m.queue.Stop()
	m.wg.Wait()
	log.Info("[WebhookQueue Manager] Stopped")
}

// IsRunning reports whether the manager has been started
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			// Final flush so counts are not lost on shutdown
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[WebhookQueue Manager] Final counter flush failed: %v", err)
			}
			return
		case <-m.counterFlushTicker.C:
			if err := counter.FlushAll(); err != nil {
				log.Errorf("[WebhookQueue Manager] Counter flush failed: %v", err)
			}
		}
	}
}

// Publish fans an event out to every active webhook of the user that
// subscribed to it. Delivery is asynchronous and best effort; callers never
// block on endpoint I/O.
func Publish(userID uint, event models.WebhookEventType, data any) {
	m := GetManager()
	if !m.IsRunning() {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Errorf("[WebhookQueue] Failed to marshal payload for %s: %v", event, err)
		return
	}

	webhooks, err := repository.GetGlobalFactory().GetWebhookRepository().GetByUserID(userID)
	if err != nil {
		log.Errorf("[WebhookQueue] Failed to load webhooks for user %d: %v", userID, err)
		return
	}

	for i := range webhooks {
		wh := &webhooks[i]
		if !wh.IsActive || !wh.Events.Contains(event) {
			continue
		}
		if _, err := m.queue.EnqueueDelivery(wh.ID, event, payload); err != nil {
			log.Errorf("[WebhookQueue] Failed to enqueue delivery for webhook %d: %v", wh.ID, err)
		}
	}
}
