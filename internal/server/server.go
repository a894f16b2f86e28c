// Package server exposes the comparison pipeline and its persistence over
// HTTP. It holds no decision logic; everything it serves comes from the
// pipeline and storage packages.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/kafuicharbeleklu/SmartProcure/internal/config"
	"github.com/kafuicharbeleklu/SmartProcure/internal/pipeline"
	"github.com/kafuicharbeleklu/SmartProcure/internal/storage"
)

func New(cfg config.Config, db *storage.DB, analysis *pipeline.AnalysisService) *gin.Engine {
	router := gin.Default()
	h := &Handler{cfg: cfg, db: db, analysis: analysis}

	api := router.Group("/api")
	api.GET("/health", h.Health)

	api.POST("/analyses", h.CreateAnalysis)
	api.GET("/analyses", h.ListAnalyses)
	api.GET("/analyses/:id", h.GetAnalysis)
	api.POST("/analyses/:id/close", h.CloseAnalysis)
	api.GET("/analyses/:id/export", h.ExportAnalysis)

	api.GET("/suppliers", h.ListSuppliers)
	api.POST("/suppliers", h.CreateSupplier)
	api.PUT("/suppliers/:id", h.UpdateSupplier)
	api.DELETE("/suppliers/:id", h.DeleteSupplier)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.SaveSettings)

	return router
}
