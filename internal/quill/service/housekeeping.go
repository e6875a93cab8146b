package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/quill/internal/quill/metrics"
	"github.com/aussiebroadwan/quill/internal/quill/store"
	"github.com/aussiebroadwan/quill/pkg/slogx"
)

const DefaultTrashRetention = 30 * 24 * time.Hour

// HousekeepingService periodically removes expired refresh tokens and notes
// that have sat in the trash longer than TrashRetention.
type HousekeepingService struct {
	Store          store.Store
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Interval       time.Duration
	TrashRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour and a non-positive retention to 30 days.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	m *metrics.Metrics,
	interval, retention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = DefaultTrashRetention
	}

	return &HousekeepingService{
		Store:          store,
		Logger:         logger,
		Metrics:        m,
		Interval:       interval,
		TrashRetention: retention,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("trash_retention", s.TrashRetention),
	)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
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

// Cleanup performs one pass. Each step is independent, a failure in one
// does not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	s.Logger.Debug("starting housekeeping cleanup")

	tokens, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", slogx.Err(err))
	} else {
		s.Metrics.HousekeepingRemoved("refresh_tokens", tokens)
	}

	cutoff := time.Now().Add(-s.TrashRetention)
	notes, err := s.Store.Notes().PurgeTrashedBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to purge trashed notes", slogx.Err(err))
	} else {
		s.Metrics.HousekeepingRemoved("trashed_notes", notes)
	}

	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("refresh_tokens_removed", tokens),
		slog.Int64("trashed_notes_removed", notes),
	)
}
