package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticker runs a task once at start and then on every interval until stopped.
type Ticker struct {
	name     string
	interval time.Duration
	task     func(context.Context)
	logger   *zap.Logger

	stop chan struct{}
	once sync.Once
	done chan struct{}
}

// NewTicker builds a periodic runner. A non-positive interval defaults to 24h.
func NewTicker(name string, interval time.Duration, task func(context.Context), logger *zap.Logger) *Ticker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop in its own goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("ticker started", zap.String("ticker", t.name), zap.Duration("interval", t.interval))
	go t.run(ctx)
}

// Stop ends the loop and waits for the current run to finish.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

func (t *Ticker) run(ctx context.Context) {
	defer close(t.done)
	t.task(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.task(ctx)
		case <-t.stop:
			t.logger.Info("ticker stopped", zap.String("ticker", t.name))
			return
		case <-ctx.Done():
			return
		}
	}
}
