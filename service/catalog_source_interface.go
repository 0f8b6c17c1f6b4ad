package service

import (
	"context"

	"origen-dotacion/models"
)

// CatalogSource defines the contract for fetching the remote catalog document.
// Implementations never cache.
type CatalogSource interface {
	Fetch(ctx context.Context) (*models.Catalog, error)
}
