package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/domain/models"
	"github.com/mamadbah2/stockscan/pkg/clients/odoo"
)

// ConfigHandler exposes connection-configuration and session management.
type ConfigHandler struct {
	client odoo.Client
	logger *zap.Logger
}

// NewConfigHandler constructs the HTTP handler adapter.
func NewConfigHandler(client odoo.Client, logger *zap.Logger) *ConfigHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigHandler{client: client, logger: logger}
}

// Save replaces the stored connection record wholesale.
func (h *ConfigHandler) Save(c *gin.Context) {
	var conn models.ConnectionConfig
	if err := c.ShouldBindJSON(&conn); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !conn.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url, db, username and password are all required"})
		return
	}

	if err := h.client.SaveConfig(c.Request.Context(), conn); err != nil {
		h.logger.Error("failed saving connection config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to save configuration"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Status reports whether a connection record is loaded. Credentials are
// never echoed back.
func (h *ConfigHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.client.IsConfigured()})
}

// Authenticate opens a session explicitly, for the connect-and-test flow in
// the settings screen.
func (h *ConfigHandler) Authenticate(c *gin.Context) {
	err := h.client.Authenticate(c.Request.Context())
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, odoo.ErrConfigMissing):
		c.JSON(http.StatusConflict, gin.H{"error": "configure the connection first"})
	case errors.Is(err, odoo.ErrAuthFailed):
		h.logger.Warn("authentication rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	default:
		h.logger.Error("authentication error", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote service unreachable"})
	}
}
