package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"origen-dotacion/service"

	"go.uber.org/zap"
)

// ImageController serves optimized product images
type ImageController struct {
	catalog   service.CatalogStoreInterface
	optimizer *service.ImageOptimizer
	logger    *zap.SugaredLogger
}

// NewImageController creates a new ImageController
func NewImageController(catalog service.CatalogStoreInterface, optimizer *service.ImageOptimizer, logger *zap.SugaredLogger) *ImageController {
	return &ImageController{
		catalog:   catalog,
		optimizer: optimizer,
		logger:    logger,
	}
}

// GetProductImage handles GET /catalog/products/{slug}/image?size=thumb|medium&index=0
func (c *ImageController) GetProductImage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "GetProductImage", http.MethodGet) {
		return
	}

	slug := r.PathValue("slug")
	product, ok := c.catalog.ProductBySlug(slug)
	if !ok {
		http.Error(w, fmt.Sprintf("Product not found: %s", slug), http.StatusNotFound)
		return
	}

	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "index must be a non-negative integer", http.StatusBadRequest)
			return
		}
		index = n
	}
	size := service.NormalizeImageSize(r.URL.Query().Get("size"))

	data, err := c.optimizer.ProductImage(r.Context(), product, index, size)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		c.logger.Errorf("❌ GetProductImage: %s[%d] size=%s: %v", slug, index, size, err)
		http.Error(w, fmt.Sprintf("Failed to load image: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		c.logger.Errorf("❌ GetProductImage: Error writing response: %v", err)
	}
}
