package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/internal/service/scanner"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// BatchHandler drives the device's single batch session over HTTP.
type BatchHandler struct {
	session *scanner.Session
	logger  *zap.Logger
}

// NewBatchHandler constructs the HTTP handler adapter.
func NewBatchHandler(session *scanner.Session, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{session: session, logger: logger}
}

// Scan feeds a decoded barcode into the batch.
func (h *BatchHandler) Scan(c *gin.Context) {
	var body struct {
		Barcode string `json:"barcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	outcome, err := h.session.Scan(c.Request.Context(), body.Barcode)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, outcome)
	case errors.Is(err, scanner.ErrDecisionPending):
		c.JSON(http.StatusConflict, gin.H{"error": "resolve the pending confirmation first"})
	case errors.Is(err, odoo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no product with that barcode"})
	case errors.Is(err, odoo.ErrConfigMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "configure the connection first"})
	case errors.Is(err, odoo.ErrAuthFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	default:
		h.logger.Error("batch scan failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote service unreachable"})
	}
}

// Confirm adds the pending product with the chosen quantity.
func (h *BatchHandler) Confirm(c *gin.Context) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.session.Confirm(body.Quantity)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no scan awaiting confirmation"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Cancel abandons whichever confirmation is pending.
func (h *BatchHandler) Cancel(c *gin.Context) {
	h.session.Cancel()
	c.Status(http.StatusNoContent)
}

// ResolveDuplicate settles a duplicate-barcode decision.
func (h *BatchHandler) ResolveDuplicate(c *gin.Context) {
	var body struct {
		Update   bool `json:"update"`
		Quantity int  `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.session.ResolveDuplicate(body.Update, body.Quantity)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no duplicate awaiting a decision"})
		return
	}
	if item == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Items lists the accumulated batch in scan order.
func (h *BatchHandler) Items(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Items())
}

// RemoveItem drops one item by barcode.
func (h *BatchHandler) RemoveItem(c *gin.Context) {
	h.session.Remove(c.Param("barcode"))
	c.Status(http.StatusNoContent)
}

// Process submits the batch sequentially and reports per-item outcomes. The
// session is emptied whether or not every item made it.
func (h *BatchHandler) Process(c *gin.Context) {
	var body struct {
		Type     string `json:"type" binding:"required"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "movement type is required"})
		return
	}

	movementType, err := models.ParseMovementType(body.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.session.Process(c.Request.Context(), movementType, body.Location)
	if err != nil {
		if errors.Is(err, scanner.ErrEmptyBatch) {
			c.JSON(http.StatusConflict, gin.H{"error": "batch is empty"})
			return
		}
		h.logger.Error("batch processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch processing failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// Discard empties the batch without submitting.
func (h *BatchHandler) Discard(c *gin.Context) {
	h.session.Discard()
	c.Status(http.StatusNoContent)
}
