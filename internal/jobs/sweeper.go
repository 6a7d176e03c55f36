package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/authstarter/internal/constants"
	"github.com/authstarter/internal/domain"
)

// SessionSweeper periodically deletes expired sessions on a cron schedule
type SessionSweeper struct {
	accounts domain.AccountService
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionSweeper creates a sweeper. The schedule uses the standard cron
// syntax plus descriptors such as "@every 10m" or "@hourly".
func NewSessionSweeper(accounts domain.AccountService, schedule string, logger *slog.Logger) (*SessionSweeper, error) {
	s := &SessionSweeper{
		accounts: accounts,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		// a slow sweep is never stacked on top of another one
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start sweeps once, then runs on schedule until ctx is cancelled
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.logger.Info("session sweeper starting", "schedule", s.schedule)

	// Clear anything that expired while the server was down
	s.RunOnce(ctx)

	s.cron.Start()
	<-ctx.Done()

	s.logger.Info("session sweeper shutting down gracefully")
	return s.shutdown()
}

// shutdown stops the scheduler and waits for an in-flight sweep
func (s *SessionSweeper) shutdown() error {
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		return nil
	case <-time.After(constants.ShutdownTimeout):
		s.logger.Warn("shutdown timeout reached while a sweep was running")
		return context.DeadlineExceeded
	}
}

// RunOnce deletes sessions that have expired and returns how many were removed
func (s *SessionSweeper) RunOnce(ctx context.Context) int64 {
	startTime := time.Now()

	n, err := s.accounts.SweepExpiredSessions(ctx, s.now())
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return 0
	}

	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n, "duration", time.Since(startTime))
	} else {
		s.logger.Debug("session sweep found nothing to remove")
	}
	return n
}
