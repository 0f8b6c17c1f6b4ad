package service

import (
	"context"

	"origen-dotacion/models"
)

// CartStoreInterface defines the contract for a quote cart
type CartStoreInterface interface {
	Hydrate(ctx context.Context)
	Add(ctx context.Context, product models.Product, opts models.AddOptions) error
	Remove(ctx context.Context, lineID string) error
	SetQty(ctx context.Context, lineID string, qty float64) error
	SetNote(ctx context.Context, lineID string, note string) error
	Clear(ctx context.Context) error
	Items() []models.CartLine
	TotalItems() int
	QuoteItems() []models.QuoteItem
}
