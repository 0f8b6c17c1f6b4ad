package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"origen-dotacion/models"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Image sizes served by the optimizer
const (
	ImageSizeThumb  = "thumb"
	ImageSizeMedium = "medium"

	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800

	maxSourceImageBytes = 20 << 20
)

// ErrImageNotFound is returned when the product has no image at the requested index
var ErrImageNotFound = errors.New("product image not found")

// ImageOptimizer downloads product images and serves resized JPEG copies from a disk cache
type ImageOptimizer struct {
	cacheDir string
	baseURL  string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewImageOptimizer creates an optimizer. Relative image URLs are resolved against baseURL.
func NewImageOptimizer(cacheDir, baseURL string, client *http.Client, logger *zap.SugaredLogger) *ImageOptimizer {
	if client == nil {
		client = http.DefaultClient
	}
	return &ImageOptimizer{
		cacheDir: cacheDir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		logger:   logger,
	}
}

// EnsureCacheDir ensures the cache directory exists, creates it if it doesn't
func (o *ImageOptimizer) EnsureCacheDir() error {
	if err := os.MkdirAll(o.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// NormalizeImageSize maps anything other than "thumb" to "medium"
func NormalizeImageSize(size string) string {
	if size == ImageSizeThumb {
		return ImageSizeThumb
	}
	return ImageSizeMedium
}

// CachePath returns the cache file for an image URL and size.
// The URL is hashed so a changed catalog image never hits a stale file.
func (o *ImageOptimizer) CachePath(imageURL, size string) string {
	sum := sha1.Sum([]byte(imageURL))
	filename := fmt.Sprintf("product_%s_%s.jpg", hex.EncodeToString(sum[:8]), NormalizeImageSize(size))
	return filepath.Join(o.cacheDir, filename)
}

// ProductImage returns the optimized JPEG for the product image at index
func (o *ImageOptimizer) ProductImage(ctx context.Context, product models.Product, index int, size string) ([]byte, error) {
	if index < 0 || index >= len(product.Images) || product.Images[index].URL == "" {
		return nil, fmt.Errorf("%w: %s[%d]", ErrImageNotFound, product.Slug, index)
	}
	imageURL := o.resolve(product.Images[index].URL)
	size = NormalizeImageSize(size)

	cachePath := o.CachePath(imageURL, size)
	if data, err := os.ReadFile(cachePath); err == nil {
		o.logger.Debugf("📦 ImageOptimizer: Cache hit %s", cachePath)
		return data, nil
	}

	raw, err := o.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}
	o.logger.Debugf("✓ ImageOptimizer: %s optimized to %s (%d -> %d bytes)", imageURL, size, len(raw), len(optimized))

	if err := o.saveToCache(cachePath, optimized); err != nil {
		// a cache write failure still serves the image
		o.logger.Warnf("⚠️  ImageOptimizer: %v", err)
	}
	return optimized, nil
}

func (o *ImageOptimizer) resolve(imageURL string) string {
	if strings.HasPrefix(imageURL, "/") && o.baseURL != "" {
		return o.baseURL + imageURL
	}
	return imageURL
}

func (o *ImageOptimizer) download(ctx context.Context, imageURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(imageURL); err != nil {
		return nil, fmt.Errorf("invalid image url %q: %w", imageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, imageURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

func (o *ImageOptimizer) saveToCache(cachePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// OptimizeImage converts imageData (PNG, JPEG, GIF...) to a JPEG that fits in
// the box of the given size, keeping the aspect ratio. Smaller images are not enlarged.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxDim, quality := maxSizeMedium, qualityMedium
	if NormalizeImageSize(size) == ImageSizeThumb {
		maxDim, quality = maxSizeThumb, qualityThumb
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
