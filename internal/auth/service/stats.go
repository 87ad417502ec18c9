package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/triadacafetera/triada/internal/auth/metrics"
	"github.com/triadacafetera/triada/internal/auth/store"
)

// StatsService periodically samples the user directory into the users
// gauges.
type StatsService struct {
	Store    store.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewStatsService creates a sampler. A non-positive interval defaults to
// one minute.
func NewStatsService(st store.Store, m *metrics.Metrics, logger *slog.Logger, interval time.Duration) *StatsService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsService{
		Store:    st,
		Metrics:  m,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to end it.
func (s *StatsService) Start() {
	go s.run()
	s.Logger.Info("stats service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sample has finished.
func (s *StatsService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("stats service stopped")
}

func (s *StatsService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sample(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sample(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sample reads the directory counts once and publishes them.
func (s *StatsService) Sample(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		s.Logger.Error("failed to count users", "error", err)
		return
	}
	s.Metrics.SetUsers(c.Total, c.Active)
	s.Logger.Debug("directory sampled", "total", c.Total, "active", c.Active)
}
