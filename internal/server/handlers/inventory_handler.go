package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/internal/service/metrics"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// SnapshotStore is the slice of local storage the inventory view touches.
type SnapshotStore interface {
	ReplaceSnapshot(ctx context.Context, products []models.Product) error
	SnapshotProducts(ctx context.Context) ([]models.Product, error)
}

// InventoryHandler serves the inventory list and the dashboard.
type InventoryHandler struct {
	client  odoo.Client
	store   SnapshotStore
	metrics *metrics.Service
	logger  *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(client odoo.Client, store SnapshotStore, metricsSvc *metrics.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{client: client, store: store, metrics: metricsSvc, logger: logger}
}

// List returns the inventory. By default it asks the server and refreshes
// the local snapshot on the way through; ?cached=true serves the snapshot
// without touching the network. A remote failure is an error response, never
// an empty list.
func (h *InventoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if cached, _ := strconv.ParseBool(c.Query("cached")); cached {
		products, err := h.store.SnapshotProducts(ctx)
		if err != nil {
			h.logger.Error("failed reading snapshot", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read cached inventory"})
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.client.Inventory(ctx, limit)
	switch {
	case err == nil:
	case errors.Is(err, odoo.ErrConfigMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "configure the connection first"})
		return
	case errors.Is(err, odoo.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	default:
		h.logger.Error("inventory fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote service unreachable"})
		return
	}

	if err := h.store.ReplaceSnapshot(ctx, products); err != nil {
		// The fetch succeeded; a stale cache is not worth failing the call.
		h.logger.Warn("failed refreshing snapshot", zap.Error(err))
	}
	c.JSON(http.StatusOK, products)
}

// Dashboard returns the aggregated metrics, computed entirely from local
// state.
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	snapshot, err := h.metrics.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed computing dashboard metrics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to compute metrics"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
