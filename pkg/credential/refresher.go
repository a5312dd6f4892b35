package credential

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher periodically calls a Provider so its cache stays warm.
type Refresher struct {
	provider Provider
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
}

// NewRefresher creates a Refresher for the given standard cron spec
// (e.g. "*/5 * * * *" or "@every 5m").
func NewRefresher(provider Provider, schedule string, logger *slog.Logger) (*Refresher, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		provider: provider,
		schedule: schedule,
		timeout:  30 * time.Second,
		logger:   logger,
		cron:     cron.New(),
	}, nil
}

// Start schedules the refresh job and warms the cache once immediately.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("refresher already running")
	}

	id, err := r.cron.AddFunc(r.schedule, func() { r.run(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule token refresh: %w", err)
	}
	r.entryID = id

	r.cron.Start()
	r.running = true

	r.logger.Info("Token refresher started", "schedule", r.schedule)

	go r.run(ctx)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info("Token refresher stopped")
}

// NextRun returns the next scheduled refresh, or the zero time when stopped.
func (r *Refresher) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return time.Time{}
	}
	return r.cron.Entry(r.entryID).Next
}

func (r *Refresher) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tok, err := r.provider.GetToken(ctx)
	if err != nil {
		r.logger.Warn("Scheduled token refresh failed", "error", err)
		return
	}
	r.logger.Debug("Scheduled token refresh", "expires_on", tok.ExpiresOn.UTC().Format(time.RFC3339))
}
