package service

import (
	"context"

	"origen-dotacion/models"
)

// CatalogStoreInterface defines the contract for reading and refreshing the catalog
type CatalogStoreInterface interface {
	Refresh(ctx context.Context) error
	Status() string
	LastError() error
	Snapshot() *models.Catalog
	Categories() []models.Category
	Banners() []models.Banner
	Products() []models.Product
	ProductBySlug(slug string) (models.Product, bool)
	ProductByID(id string) (models.Product, bool)
	CategoryBySlug(slug string) (models.Category, bool)
	CategoryTree(includeAll bool) []models.CategoryNode
	CategoryPage(slug string) models.CategoryPage
	Featured(limit int) []models.Product
	FeaturedInSelection(slug string, limit int) []models.Product
	ProductsInSelection(slug string, limit int) []models.Product
	Search(query string) models.SearchResult
}
