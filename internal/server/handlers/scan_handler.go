package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/service/scanner"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// ScanHandler serves the single-scan flow and the history screen.
type ScanHandler struct {
	svc    *scanner.Service
	logger *zap.Logger
}

// NewScanHandler constructs the HTTP handler adapter.
func NewScanHandler(svc *scanner.Service, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{svc: svc, logger: logger}
}

// Lookup resolves a barcode to a product. Not-found, unconfigured and
// transport failures map to distinct status codes so the caller never has to
// guess which one happened.
func (h *ScanHandler) Lookup(c *gin.Context) {
	product, err := h.svc.Lookup(c.Request.Context(), c.Param("barcode"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, odoo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no product with that barcode"})
	case errors.Is(err, odoo.ErrConfigMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "configure the connection first"})
	case errors.Is(err, odoo.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	default:
		h.logger.Error("product lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote service unreachable"})
	}
}

// Submit records one confirmed scan: stock move first, ledger entry only on
// success.
func (h *ScanHandler) Submit(c *gin.Context) {
	var req scanner.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.svc.Submit(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, entry)
	case errors.Is(err, odoo.ErrConfigMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "configure the connection first"})
	case errors.Is(err, odoo.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	default:
		h.logger.Error("scan submission failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "stock move was not accepted"})
	}
}

// SetQuantity resets a product's on-hand count (inventory adjustment).
func (h *ScanHandler) SetQuantity(c *gin.Context) {
	var body struct {
		ProductID int `json:"product_id" binding:"required"`
		Quantity  int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SetQuantity(c.Request.Context(), body.ProductID, body.Quantity); err != nil {
		h.logger.Error("quantity adjustment failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "quantity adjustment failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// History lists the scan ledger newest-first.
func (h *ScanHandler) History(c *gin.Context) {
	entries, err := h.svc.History(c.Request.Context())
	if err != nil {
		h.logger.Error("failed reading history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read history"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// DeleteEntry removes one history entry.
func (h *ScanHandler) DeleteEntry(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("failed deleting history entry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to delete entry"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearHistory wipes the ledger.
func (h *ScanHandler) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context()); err != nil {
		h.logger.Error("failed clearing history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}
