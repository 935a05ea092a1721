package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"DailyDigest/internal/ports"
	"DailyDigest/pkg/logger"
)

// CronScheduler triggers jobs from a standard five-field cron expression
// evaluated in a fixed location. Overlapping runs are skipped.
type CronScheduler struct {
	mu      sync.Mutex
	expr    string
	loc     *time.Location
	cron    *cron.Cron
	entry   cron.EntryID
	running bool
	logger  *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the cron expression expr; a nil location means UTC.
func NewCronScheduler(expr string, loc *time.Location, log *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &CronScheduler{expr: expr, loc: loc, logger: log}
}

// Start registers job and begins dispatching. Calling Start twice is a no-op.
// The scheduler stops on its own when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	cronLog := cron.PrintfLogger(logger.New("scheduler"))
	c.cron = cron.New(
		cron.WithLocation(c.loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	id, err := c.cron.AddFunc(c.expr, func() {
		job(time.Now().In(c.loc))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.expr, err)
	}
	c.entry = id
	c.running = true
	c.cron.Start()

	c.logger.Info("scheduler started", "cron", c.expr, "timezone", c.loc.String(), "next_run", c.cron.Entry(id).Next)

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Next reports the next planned trigger, or the zero time when stopped.
func (c *CronScheduler) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return time.Time{}
	}
	return c.cron.Entry(c.entry).Next
}

// Stop halts dispatching and waits for a running job until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	done := c.cron.Stop()
	c.mu.Unlock()

	select {
	case <-done.Done():
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running job: %w", ctx.Err())
	}
}
