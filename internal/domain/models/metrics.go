package models

import "time"

// DashboardMetrics aggregates the figures shown on the dashboard. Product
// counts come from the local snapshot cache, scan counts from the ledger.
type DashboardMetrics struct {
	TotalProducts   int       `json:"total_products"`
	LowStockItems   int       `json:"low_stock_items"`
	OutOfStockItems int       `json:"out_of_stock_items"`
	TodayScans      int       `json:"today_scans"`
	RecentMovements int       `json:"recent_movements"`
	LastSyncedAt    time.Time `json:"last_synced_at,omitzero"`
}
