package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
	"github.com/aussiebroadwan/kurdforest/pkg/errutil"
)

// HousekeepingService periodically deletes expired session rows.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
		s.Logger.Info("housekeeping service started", "interval", s.Interval)
	})
}

// Stop blocks until the worker has finished any in-progress cleanup. It is a
// no-op if Start was never called.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		if !s.started.Load() {
			return
		}
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes sessions that have expired and returns how many went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	n, err := s.Store.Sessions().DeleteExpiredSessions(ctx, s.Now().UTC())
	if err != nil {
		errutil.LogError(s.Logger, "failed to delete expired sessions", err)
		return 0
	}
	sessionsPurgedTotal.Add(float64(n))
	s.Logger.Debug("housekeeping cleanup completed", "expired_sessions", n)
	return n
}
