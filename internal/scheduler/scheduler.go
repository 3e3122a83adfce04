package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// SnapshotWriter receives the refreshed product list.
type SnapshotWriter interface {
	ReplaceSnapshot(ctx context.Context, products []models.Product) error
}

// Scheduler refreshes the local product snapshot on a cron schedule so the
// dashboard and the cached inventory view stay close to the server without a
// user-triggered sync.
type Scheduler struct {
	cron   *cron.Cron
	client odoo.Client
	store  SnapshotWriter
	cfg    config.Config
	logger *zap.Logger
}

// NewScheduler creates a scheduler instance.
func NewScheduler(cfg config.Config, client odoo.Client, store SnapshotWriter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(),
		client: client,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the sync job and starts the cron loop. Does nothing when
// auto-sync is disabled.
func (s *Scheduler) Start() {
	if !s.cfg.Sync.Enabled {
		s.logger.Info("auto-sync disabled")
		return
	}

	if _, err := s.cron.AddFunc(s.cfg.Sync.CronSchedule, s.refreshSnapshot); err != nil {
		s.logger.Error("failed to schedule snapshot refresh", zap.Error(err))
		return
	}

	s.logger.Info("auto-sync scheduled", zap.String("schedule", s.cfg.Sync.CronSchedule))
	s.cron.Start()
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	products, err := s.client.Inventory(ctx, s.cfg.Odoo.InventoryLimit)
	if err != nil {
		// Sync failures are routine (offline device, unconfigured client);
		// the stale snapshot remains in place.
		s.logger.Warn("snapshot refresh failed", zap.Error(err))
		return
	}

	if err := s.store.ReplaceSnapshot(ctx, products); err != nil {
		s.logger.Error("failed persisting snapshot", zap.Error(err))
		return
	}

	s.logger.Info("snapshot refreshed", zap.Int("products", len(products)))
}
