package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP API surface.
func NewRouter(h *ReceiptHandler, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger))
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		receipts := api.Group("/receipts")
		{
			receipts.POST("/extract", h.ExtractText)
			receipts.POST("", h.UploadReceipt)
			receipts.GET("", h.ListReceipts)
			receipts.GET("/export", h.ExportReceipts)
			receipts.GET("/:id", h.GetReceipt)
			receipts.DELETE("/:id", h.DeleteReceipt)
		}
		api.GET("/stats", h.Stats)
	}

	return router
}
