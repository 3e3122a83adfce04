// Package metrics computes the dashboard aggregates from local state: the
// product snapshot cache for stock figures and the scan ledger for activity.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/config"
	"github.com/mamadbah2/stockscan/internal/domain/models"
)

// Repository is the slice of the on-device store the dashboard reads.
type Repository interface {
	SnapshotProducts(ctx context.Context) ([]models.Product, error)
	SnapshotRefreshedAt(ctx context.Context) (time.Time, error)
	CountScansSince(ctx context.Context, cutoff time.Time) (int, error)
}

// recentWindow is how far back "recent movements" reaches.
const recentWindow = 7 * 24 * time.Hour

// Service aggregates dashboard figures.
type Service struct {
	repo   Repository
	cfg    config.MetricsConfig
	logger *zap.Logger
}

// NewService wires a new metrics service instance.
func NewService(repo Repository, cfg config.MetricsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// Snapshot computes the current dashboard figures. All inputs are local, so
// this works offline; staleness shows through LastSyncedAt.
func (s *Service) Snapshot(ctx context.Context) (models.DashboardMetrics, error) {
	products, err := s.repo.SnapshotProducts(ctx)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("load product snapshot: %w", err)
	}

	var out models.DashboardMetrics
	out.TotalProducts = len(products)
	for _, p := range products {
		switch {
		case p.Quantity <= 0:
			out.OutOfStockItems++
		case p.Quantity <= s.cfg.LowStockThreshold:
			out.LowStockItems++
		}
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if out.TodayScans, err = s.repo.CountScansSince(ctx, startOfDay); err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("count today's scans: %w", err)
	}
	if out.RecentMovements, err = s.repo.CountScansSince(ctx, now.Add(-recentWindow)); err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("count recent movements: %w", err)
	}

	if out.LastSyncedAt, err = s.repo.SnapshotRefreshedAt(ctx); err != nil {
		// A missing refresh stamp is cosmetic; the counts above still stand.
		s.logger.Warn("failed reading snapshot refresh time", zap.Error(err))
		err = nil
	}

	return out, nil
}
