package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/featureflags"
)

// DirectoryRefresher forces a remote fetch of the station directory.
type DirectoryRefresher interface {
	Refresh(ctx context.Context) error
}

// FlagChecker evaluates feature flags.
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string) bool
}

// RefreshMetrics tracks refresh statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	SkippedRuns    int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	LastError       string
}

// RefresherConfig holds configuration for creating a Refresher.
type RefresherConfig struct {
	Config    RefreshConfig
	Directory DirectoryRefresher
	Flags     FlagChecker
	Logger    zerolog.Logger
}

// Refresher runs the directory refresh on a schedule. It is an explicit,
// cancellable task: Start launches the loop and Stop tears it down and
// waits for it to exit.
type Refresher struct {
	config    RefreshConfig
	directory DirectoryRefresher
	flags     FlagChecker
	logger    zerolog.Logger
	metrics   *RefreshMetrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a new Refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	config := cfg.Config
	if config.Interval <= 0 {
		config = DefaultRefreshConfig()
	}

	return &Refresher{
		config:    config,
		directory: cfg.Directory,
		flags:     cfg.Flags,
		logger:    cfg.Logger,
		metrics:   &RefreshMetrics{},
	}
}

// Start launches the scheduled refresh loop. Calling Start on a running
// refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done

	go r.loop(loopCtx, done)

	r.logger.Info().
		Dur("interval", r.config.Interval).
		Dur("initial_delay", r.config.InitialDelay).
		Msg("scheduled directory refresh started")
}

// Stop cancels the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	r.logger.Info().Msg("scheduled directory refresh stopped")
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	if r.config.InitialDelay > 0 {
		select {
		case <-time.After(r.config.InitialDelay):
		case <-ctx.Done():
			return
		}
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	// First run right after the initial delay.
	_ = r.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			_ = r.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce executes a single refresh, honoring the pause flag and the
// configured timeout.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if r.flags != nil && r.flags.IsEnabled(ctx, featureflags.FlagDisableScheduledRefresh) {
		r.logger.Debug().Msg("scheduled refresh disabled by feature flag, skipping")
		r.recordSkip()
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	start := time.Now()
	err := r.directory.Refresh(runCtx)
	duration := time.Since(start)

	r.recordRun(duration, err)

	if err != nil {
		r.logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("scheduled directory refresh failed")
		return err
	}

	r.logger.Info().
		Dur("duration", duration).
		Msg("scheduled directory refresh completed")
	return nil
}

func (r *Refresher) recordRun(duration time.Duration, err error) {
	r.metrics.mu.Lock()
	defer r.metrics.mu.Unlock()

	r.metrics.TotalRuns++
	r.metrics.LastRunAt = time.Now()
	r.metrics.LastRunDuration = duration
	if err != nil {
		r.metrics.FailedRuns++
		r.metrics.LastError = err.Error()
	} else {
		r.metrics.SuccessfulRuns++
		r.metrics.LastError = ""
	}
}

func (r *Refresher) recordSkip() {
	r.metrics.mu.Lock()
	defer r.metrics.mu.Unlock()
	r.metrics.SkippedRuns++
}

// MetricsSnapshot returns the current metrics as a map.
func (r *Refresher) MetricsSnapshot() map[string]interface{} {
	r.metrics.mu.RLock()
	defer r.metrics.mu.RUnlock()

	return map[string]interface{}{
		"total_runs":        r.metrics.TotalRuns,
		"successful_runs":   r.metrics.SuccessfulRuns,
		"failed_runs":       r.metrics.FailedRuns,
		"skipped_runs":      r.metrics.SkippedRuns,
		"last_run_at":       r.metrics.LastRunAt,
		"last_run_duration": r.metrics.LastRunDuration.String(),
		"last_error":        r.metrics.LastError,
	}
}
