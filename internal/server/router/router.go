package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockscan/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(configH *handlers.ConfigHandler, scanH *handlers.ScanHandler, batchH *handlers.BatchHandler, inventoryH *handlers.InventoryHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	api.POST("/config", configH.Save)
	api.GET("/config/status", configH.Status)
	api.POST("/auth", configH.Authenticate)

	api.GET("/products/:barcode", scanH.Lookup)
	api.POST("/adjustments", scanH.SetQuantity)

	api.POST("/scans", scanH.Submit)
	api.GET("/scans", scanH.History)
	api.DELETE("/scans/:id", scanH.DeleteEntry)
	api.DELETE("/scans", scanH.ClearHistory)

	batch := api.Group("/batch")
	batch.POST("/scan", batchH.Scan)
	batch.POST("/confirm", batchH.Confirm)
	batch.POST("/cancel", batchH.Cancel)
	batch.POST("/duplicate", batchH.ResolveDuplicate)
	batch.GET("", batchH.Items)
	batch.DELETE("/items/:barcode", batchH.RemoveItem)
	batch.POST("/process", batchH.Process)
	batch.DELETE("", batchH.Discard)

	api.GET("/inventory", inventoryH.List)
	api.GET("/dashboard", inventoryH.Dashboard)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
