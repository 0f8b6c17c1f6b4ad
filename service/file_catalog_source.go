package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"origen-dotacion/models"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const fileWatchDebounce = 300 * time.Millisecond

// FileCatalogSource reads the catalog document from a local JSON or YAML file
type FileCatalogSource struct {
	path   string
	logger *zap.SugaredLogger
}

// NewFileCatalogSource creates a FileCatalogSource. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON.
func NewFileCatalogSource(path string, logger *zap.SugaredLogger) *FileCatalogSource {
	return &FileCatalogSource{
		path:   filepath.Clean(path),
		logger: logger,
	}
}

var _ CatalogSource = (*FileCatalogSource)(nil)

// Fetch reads and decodes the file. A missing updatedAt takes the file modification time.
func (s *FileCatalogSource) Fetch(ctx context.Context) (*models.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog file: %w", err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	if s.isYAML() {
		if data, err = yamlToJSON(data); err != nil {
			return nil, err
		}
	}

	c, err := decodeCatalog(data)
	if err != nil {
		return nil, err
	}
	if c.UpdatedAt == "" {
		c.UpdatedAt = info.ModTime().UTC().Format(time.RFC3339)
	}
	return c, nil
}

func (s *FileCatalogSource) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML document so it goes through the same decoding as JSON
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return out, nil
}

func (s *FileCatalogSource) String() string {
	return "file:" + s.path
}

// Watch calls refresh after the file is written, created or renamed into place,
// until ctx is done. Bursts of events are coalesced.
// The parent directory is watched because editors replace files on save.
func (s *FileCatalogSource) Watch(ctx context.Context, refresh func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	s.logger.Infof("🔎 FileCatalogSource.Watch: watching %s", s.path)

	debounce := time.NewTimer(fileWatchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(fileWatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnf("⚠️  FileCatalogSource.Watch: %v", err)

		case <-debounce.C:
			s.logger.Infof("📦 FileCatalogSource.Watch: %s changed, refreshing", s.path)
			if err := refresh(ctx); err != nil {
				s.logger.Errorf("❌ FileCatalogSource.Watch: %v", err)
			}
		}
	}
}
