package controller

import (
	"fmt"
	"net/http"

	"origen-dotacion/service"

	"go.uber.org/zap"
)

// ImageWarmupController handles HTTP requests for the image cache warmup
type ImageWarmupController struct {
	warmup *service.ImageWarmupService
	logger *zap.SugaredLogger
}

// NewImageWarmupController creates a new ImageWarmupController
func NewImageWarmupController(warmup *service.ImageWarmupService, logger *zap.SugaredLogger) *ImageWarmupController {
	return &ImageWarmupController{
		warmup: warmup,
		logger: logger,
	}
}

// WarmImages handles POST /admin/images/warm
// Optimizes every product image of the current catalog into the cache
func (c *ImageWarmupController) WarmImages(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "WarmImages", http.MethodPost) {
		return
	}

	c.logger.Infof("📥 WarmImages: request received")

	report, err := c.warmup.WarmAll(r.Context())
	if err != nil {
		c.logger.Errorf("❌ WarmImages: %v", err)
		http.Error(w, fmt.Sprintf("Failed to warm images: %v", err), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, report, c.logger, "WarmImages")
	c.logger.Infof("✅ WarmImages: %d/%d images optimized", report.Optimized, report.Total)
}
