package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"origen-dotacion/models"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveCatalogSource reads the catalog JSON document from a Google Drive file
type DriveCatalogSource struct {
	client *drive.Service
	fileID string
	logger *zap.SugaredLogger
}

// NewDriveCatalogSource creates a Drive-backed source.
// credentialsPath should be the path to the Service Account JSON file.
func NewDriveCatalogSource(ctx context.Context, credentialsPath, fileID string, logger *zap.SugaredLogger) (*DriveCatalogSource, error) {
	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveCatalogSource{
		client: driveService,
		fileID: fileID,
		logger: logger,
	}, nil
}

var _ CatalogSource = (*DriveCatalogSource)(nil)

// Fetch downloads the file content and decodes it as a catalog.
// When the document has no updatedAt, the file's modifiedTime is used.
func (s *DriveCatalogSource) Fetch(ctx context.Context) (*models.Catalog, error) {
	meta, err := s.client.Files.Get(s.fileID).
		Fields("id, name, mimeType, modifiedTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get drive file %s: %w", s.fileID, err)
	}

	resp, err := s.client.Files.Get(s.fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", s.fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file %s: %w", s.fileID, err)
	}

	catalog, err := decodeCatalog(data)
	if err != nil {
		return nil, err
	}

	if catalog.UpdatedAt == "" && meta.ModifiedTime != "" {
		if t, perr := time.Parse(time.RFC3339, meta.ModifiedTime); perr == nil {
			catalog.UpdatedAt = t.UTC().Format(time.RFC3339)
		}
	}

	s.logger.Debugf("📥 DriveCatalogSource: Downloaded %s (%s, %d bytes)", meta.Name, meta.MimeType, len(data))
	return catalog, nil
}

// String names the source in logs
func (s *DriveCatalogSource) String() string {
	return "drive:" + s.fileID
}
