// Package maintenance hosts background jobs that reclaim dead rows. Expired
// activation tokens are already unusable (the engine rejects and lazily
// deletes them on use); the scheduled purge only keeps the table from
// accumulating rows for codes that were never re-submitted.
package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/signupd/internal/store"
	"github.com/charlesng35/signupd/pkg/logger"
)

const defaultTokenSpec = "@hourly"

// Cleaner coordinates scheduled cleanup of expired activation tokens.
type Cleaner struct {
	tokens store.TokenStore
	ttl    time.Duration
	cron   *cron.Cron
	now    func() time.Time
	log    *zap.Logger

	tokenSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for expiry comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithTokenSchedule overrides the cron specification for token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(tokens store.TokenStore, ttl time.Duration, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		tokens:        tokens,
		ttl:           ttl,
		now:           time.Now,
		tokenSchedule: defaultTokenSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the cleanup job with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.tokens == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("token cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the cleanup routine. Used by the scheduler, during
// graceful shutdown, and in tests.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.tokens != nil {
		cutoff := c.now().Add(-c.ttl)
		removed, err := c.tokens.DeleteExpired(ctx, cutoff)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if removed > 0 {
			c.log.Info("expired activation tokens purged", zap.Int64("count", removed))
		}
	}

	return errs
}
