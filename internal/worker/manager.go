package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redesocial/engine/internal/queue"
)

// SweepFunc is a periodic maintenance job, e.g. the retention sweep.
type SweepFunc func(ctx context.Context) (int64, error)

// Manager supervises the consumers and periodic jobs of one service binary.
type Manager struct {
	consumers []*queue.Consumer

	sweep         SweepFunc
	sweepInterval time.Duration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewManager() *Manager {
	return &Manager{}
}

// AddConsumer registers a consumer to run under the manager.
func (m *Manager) AddConsumer(c *queue.Consumer) {
	m.consumers = append(m.consumers, c)
}

// WithSweep registers a periodic job run at the given interval.
func (m *Manager) WithSweep(fn SweepFunc, interval time.Duration) {
	m.sweep = fn
	m.sweepInterval = interval
}

// Start launches all registered consumers and the sweep loop.
func (m *Manager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.started = true

	for _, c := range m.consumers {
		m.wg.Add(1)
		go func(c *queue.Consumer) {
			defer m.wg.Done()
			c.Run(ctx)
		}(c)
	}

	if m.sweep != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runSweep(ctx)
		}()
	}

	logrus.Infof("[Worker] Manager started: consumers=%d", len(m.consumers))
}

func (m *Manager) runSweep(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.sweep(ctx); err != nil {
				logrus.Errorf("[Worker] Sweep FAILED: err=%v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Health reports whether the consumers are running. Wired into the
// service health endpoint.
func (m *Manager) Health(ctx context.Context) error {
	if !m.started {
		return errors.New("consumers not started")
	}
	return nil
}

// Stop cancels all workers and blocks until they exit.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	for _, c := range m.consumers {
		if err := c.Close(); err != nil {
			logrus.Warnf("[Worker] Consumer close FAILED: err=%v", err)
		}
	}
	m.wg.Wait()
	m.started = false
	logrus.Info("[Worker] Manager stopped")
}
