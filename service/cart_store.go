package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"origen-dotacion/models"
	"origen-dotacion/repository"
	"origen-dotacion/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartStorageKey is the fixed key the cart is persisted under
const CartStorageKey = "origen_cart_v1"

// CartStore owns the quote cart of one device session.
// It is empty right after NewCartStore; Hydrate loads the persisted lines.
type CartStore struct {
	mu      sync.Mutex
	items   []models.CartLine
	storage repository.CartStorageInterface
	key     string
	newID   func() string
	logger  *zap.SugaredLogger
}

// NewCartStore creates an empty CartStore bound to a storage key
func NewCartStore(storage repository.CartStorageInterface, key string, logger *zap.SugaredLogger) *CartStore {
	if key == "" {
		key = CartStorageKey
	}
	return &CartStore{
		items:   []models.CartLine{},
		storage: storage,
		key:     key,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// Ensure CartStore implements CartStoreInterface
var _ CartStoreInterface = (*CartStore)(nil)

// Hydrate replaces the in-memory lines with the persisted ones.
// Unreadable storage, invalid JSON or a non-array payload give an empty cart.
func (s *CartStore) Hydrate(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warnf("⚠️  CartStore.Hydrate: Could not read key=%s, starting empty: %v", s.key, err)
	}

	items := parseCartLines(raw, ok && err == nil)

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.logger.Debugf("🛒 CartStore.Hydrate: key=%s lines=%d", s.key, len(items))
}

func parseCartLines(raw string, found bool) []models.CartLine {
	if !found || raw == "" {
		return []models.CartLine{}
	}
	// Decoding into a slice fails for objects, strings and numbers, so a
	// non-array payload lands in the same branch as broken JSON.
	var items []models.CartLine
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []models.CartLine{}
	}
	return items
}

// Add puts a product into the cart. A line with the same product and the same
// normalized size, color and note absorbs the quantity; otherwise a new line is
// prepended. The returned error only reports a failed write to storage.
func (s *CartStore) Add(ctx context.Context, product models.Product, opts models.AddOptions) error {
	qty := utils.ClampQty(opts.Qty)
	size := utils.Norm(opts.Size)
	color := utils.Norm(opts.Color)
	note := utils.Norm(opts.Note)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		line := &s.items[i]
		if line.ProductID == product.ID &&
			utils.Norm(line.Size) == size &&
			utils.Norm(line.Color) == color &&
			utils.Norm(line.Note) == note {
			line.Qty += qty
			s.logger.Debugf("🛒 CartStore.Add: Merged product=%s into line=%s qty=%d", product.ID, line.LineID, line.Qty)
			return s.persistLocked(ctx)
		}
	}

	line := models.CartLine{
		LineID:      s.newID(),
		ProductID:   product.ID,
		ProductSlug: product.Slug,
		Ref:         product.Ref,
		Name:        product.Name,
		ImageURL:    product.FirstImageURL(),
		Qty:         qty,
		Size:        size,
		Color:       color,
		Note:        note,
	}
	s.items = append([]models.CartLine{line}, s.items...)
	s.logger.Debugf("🆕 CartStore.Add: New line=%s product=%s qty=%d", line.LineID, product.ID, qty)
	return s.persistLocked(ctx)
}

// Remove deletes a line. Unknown ids are a no-op.
func (s *CartStore) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0:0]
	for _, line := range s.items {
		if line.LineID != lineID {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(s.items) {
		return nil
	}
	s.items = kept
	return s.persistLocked(ctx)
}

// SetQty replaces the quantity of a line. A finite qty <= 0 drops the line;
// NaN and ±Inf become 1; anything else is floored with a minimum of 1.
func (s *CartStore) SetQty(ctx context.Context, lineID string, qty float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.CartLine, 0, len(s.items))
	changed := false
	for _, line := range s.items {
		if line.LineID == lineID {
			changed = true
			if !math.IsNaN(qty) && !math.IsInf(qty, 0) && qty <= 0 {
				continue
			}
			line.Qty = utils.ClampQtyValue(qty)
		}
		if line.Qty > 0 {
			next = append(next, line)
		}
	}
	if !changed {
		return nil
	}
	s.items = next
	return s.persistLocked(ctx)
}

// SetNote replaces the note of a line. Blank notes are stored as absent.
func (s *CartStore) SetNote(ctx context.Context, lineID string, note string) error {
	note = utils.Norm(note)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].LineID == lineID {
			s.items[i].Note = note
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Clear empties the cart
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.CartLine{}
	return s.persistLocked(ctx)
}

// Items returns a copy of the current lines, most recent first
func (s *CartStore) Items() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartLine, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems sums the quantities of all lines. Computed on every call.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.items {
		total += line.Qty
	}
	return total
}

// Line returns a single line by id
func (s *CartStore) Line(lineID string) (models.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.items {
		if line.LineID == lineID {
			return line, true
		}
	}
	return models.CartLine{}, false
}

// QuoteItems projects the lines into quote message items
func (s *CartStore) QuoteItems() []models.QuoteItem {
	items := s.Items()
	out := make([]models.QuoteItem, 0, len(items))
	for _, line := range items {
		out = append(out, models.QuoteItem{
			Name:  line.Name,
			Ref:   line.Ref,
			Qty:   line.Qty,
			Size:  line.Size,
			Color: line.Color,
			Note:  line.Note,
		})
	}
	return out
}

// persistLocked writes the full line list. Callers hold s.mu.
func (s *CartStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Errorf("❌ CartStore: Error persisting key=%s: %v", s.key, err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
