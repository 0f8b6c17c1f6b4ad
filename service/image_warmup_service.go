package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	"origen-dotacion/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const warmupConcurrency = 4

// ImageWarmupReport summarizes a cache warmup run
type ImageWarmupReport struct {
	Total     int      `json:"total"`
	Optimized int      `json:"optimized"`
	Cached    int      `json:"cached"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// ImageWarmupService fills the image cache for every product image of the catalog
type ImageWarmupService struct {
	catalog   CatalogStoreInterface
	optimizer *ImageOptimizer
	logger    *zap.SugaredLogger
}

// NewImageWarmupService creates a new ImageWarmupService
func NewImageWarmupService(catalog CatalogStoreInterface, optimizer *ImageOptimizer, logger *zap.SugaredLogger) *ImageWarmupService {
	return &ImageWarmupService{
		catalog:   catalog,
		optimizer: optimizer,
		logger:    logger,
	}
}

type warmupJob struct {
	product models.Product
	index   int
	size    string
}

// WarmAll optimizes every product image in both sizes.
// Images already in the cache are skipped; failures are collected, not fatal.
func (s *ImageWarmupService) WarmAll(ctx context.Context) (ImageWarmupReport, error) {
	var jobs []warmupJob
	for _, p := range s.catalog.Products() {
		for i, img := range p.Images {
			if img.URL == "" {
				continue
			}
			for _, size := range []string{ImageSizeThumb, ImageSizeMedium} {
				jobs = append(jobs, warmupJob{product: p, index: i, size: size})
			}
		}
	}

	s.logger.Infof("📥 ImageWarmup: %d images to check", len(jobs))
	report := ImageWarmupReport{Total: len(jobs), Errors: []string{}}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)

	for _, job := range jobs {
		g.Go(func() error {
			cachePath := s.optimizer.CachePath(s.optimizer.resolve(job.product.Images[job.index].URL), job.size)
			if _, err := os.Stat(cachePath); err == nil {
				mu.Lock()
				report.Cached++
				mu.Unlock()
				return nil
			}

			_, err := s.optimizer.ProductImage(gctx, job.product, job.index, job.size)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				msg := fmt.Sprintf("%s[%d] %s: %v", job.product.Slug, job.index, job.size, err)
				s.logger.Warnf("❌ ImageWarmup: %s", msg)
				report.Failed++
				report.Errors = append(report.Errors, msg)
				return nil
			}
			report.Optimized++
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("image warmup interrupted: %w", err)
	}

	s.logger.Infof("🎉 ImageWarmup: %d optimized, %d cached, %d failed out of %d", report.Optimized, report.Cached, report.Failed, report.Total)
	return report, nil
}
