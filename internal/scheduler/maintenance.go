package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

// DefaultMaintenanceInterval is used when the configured interval is zero.
const DefaultMaintenanceInterval = 6 * time.Hour

// Maintainable is a store with periodic housekeeping. Records are never
// purged: tombstones must outlive every device's watermark.
type Maintainable interface {
	Maintain(ctx context.Context) error
}

// Maintenance runs store housekeeping on a ticker.
type Maintenance struct {
	store    Maintainable
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMaintenance creates the maintenance loop.
func NewMaintenance(store Maintainable, log logger.Logger, interval time.Duration) *Maintenance {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	return &Maintenance{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic maintenance. The first run happens after one
// interval: a freshly opened store has nothing to compact.
func (m *Maintenance) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	go func() {
		defer close(m.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Run(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the loop and waits for a running pass to finish.
func (m *Maintenance) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

// Run performs one maintenance pass.
func (m *Maintenance) Run(ctx context.Context) {
	start := time.Now()
	if err := m.store.Maintain(ctx); err != nil {
		m.logger.Error("store maintenance failed", logger.Error(err))
		return
	}
	m.logger.Debug("store maintenance completed",
		logger.Duration("duration", time.Since(start)))
}
