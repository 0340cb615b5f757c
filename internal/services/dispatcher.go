package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/signupd/pkg/logger"
)

const defaultTaskTimeout = 30 * time.Second

// Task is a unit of background work submitted to the Dispatcher.
type Task func(ctx context.Context) error

// Dispatcher runs fire-and-forget tasks on their own goroutines. Submission
// returns immediately; failures are observed only through logging, never
// through the submitting caller's return value.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
	log     *zap.Logger
}

// DispatcherOption customises the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTaskTimeout bounds the execution time of each submitted task.
func WithTaskTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// NewDispatcher constructs a Dispatcher with sensible defaults.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	dp := &Dispatcher{
		timeout: defaultTaskTimeout,
		log:     logger.WithModule("dispatcher"),
	}
	for _, opt := range opts {
		opt(dp)
	}
	return dp
}

// Submit schedules the task and returns without waiting for it.
func (d *Dispatcher) Submit(name string, task Task) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := task(ctx); err != nil {
			d.log.Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Wait blocks until all submitted tasks finish or the context expires. Used
// during graceful shutdown and by tests that need deterministic ordering.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
