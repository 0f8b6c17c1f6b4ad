package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"origen-dotacion/models"
	"origen-dotacion/service"

	"go.uber.org/zap"
)

// validFormats is a map of valid brochure formats
var validFormats = map[string]bool{
	"html": true,
	"pdf":  true,
	"png":  true,
}

// BrochureController handles HTTP requests for the printable brochure
type BrochureController struct {
	brochure *service.BrochureService
	logger   *zap.SugaredLogger
}

// NewBrochureController creates a new BrochureController
func NewBrochureController(brochure *service.BrochureService, logger *zap.SugaredLogger) *BrochureController {
	return &BrochureController{
		brochure: brochure,
		logger:   logger,
	}
}

func brochureCategory(r *http.Request) string {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		return models.AllCategorySlug
	}
	return category
}

// Render handles GET /catalog/brochure/render?category=
// This is the page headless Chrome prints.
func (c *BrochureController) Render(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "RenderBrochure", http.MethodGet) {
		return
	}
	c.writeHTML(w, brochureCategory(r), "RenderBrochure")
}

func (c *BrochureController) writeHTML(w http.ResponseWriter, category, handler string) {
	html, err := c.brochure.RenderBrochureHTML(category)
	if err != nil {
		c.writeError(w, err, handler)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		c.logger.Errorf("❌ %s: Error writing HTML response: %v", handler, err)
	}
}

func (c *BrochureController) writeError(w http.ResponseWriter, err error, handler string) {
	if errors.Is(err, service.ErrCategoryNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	c.logger.Errorf("❌ %s: %v", handler, err)
	http.Error(w, fmt.Sprintf("Failed to generate brochure: %v", err), http.StatusInternalServerError)
}

// Download handles GET /catalog/brochure?category=&format=html|pdf|png
func (c *BrochureController) Download(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, c.logger, "DownloadBrochure", http.MethodGet) {
		return
	}

	category := brochureCategory(r)
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}
	if !validFormats[format] {
		c.logger.Warnf("❌ DownloadBrochure: Invalid format: %s", format)
		http.Error(w, "Invalid format. Valid formats: html, pdf, png", http.StatusBadRequest)
		return
	}

	c.logger.Infof("📥 DownloadBrochure: category=%s format=%s", category, format)

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "html":
		c.writeHTML(w, category, "DownloadBrochure")
		return
	case "pdf":
		data, err = c.brochure.GeneratePDF(r.Context(), category)
		contentType = "application/pdf"
	case "png":
		data, err = c.brochure.GenerateCoverPNG(r.Context(), category)
		contentType = "image/png"
	}
	if err != nil {
		c.writeError(w, err, "DownloadBrochure")
		return
	}

	filename := fmt.Sprintf("origen_%s.%s", category, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		c.logger.Errorf("❌ DownloadBrochure: Error writing response: %v", err)
	}
}
