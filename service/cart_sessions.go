package service

import (
	"context"
	"hash/fnv"
	"sync"

	"origen-dotacion/repository"

	"go.uber.org/zap"
)

const cartSessionStripes = 64

// CartSessions opens the CartStore of a device session.
// Each store is persisted under CartStorageKey + ":" + session id and is
// hydrated from storage on every open, so writes from other processes are seen.
type CartSessions struct {
	stripes [cartSessionStripes]sync.Mutex
	storage repository.CartStorageInterface
	logger  *zap.SugaredLogger
}

// NewCartSessions creates a session opener over the given storage
func NewCartSessions(storage repository.CartStorageInterface, logger *zap.SugaredLogger) *CartSessions {
	return &CartSessions{
		storage: storage,
		logger:  logger,
	}
}

// StorageKey returns the persisted key for a session
func StorageKey(sessionID string) string {
	if sessionID == "" {
		return CartStorageKey
	}
	return CartStorageKey + ":" + sessionID
}

// Get returns the cart of a session as currently persisted
func (c *CartSessions) Get(ctx context.Context, sessionID string) *CartStore {
	cart := NewCartStore(c.storage, StorageKey(sessionID), c.logger)
	cart.Hydrate(ctx)
	c.logger.Debugf("🛒 CartSessions.Get: session=%s lines=%d", sessionID, len(cart.Items()))
	return cart
}

// Open returns the cart of a session and holds the session lock until release
// is called. Requests of the same session that modify the cart go through
// Open so their read-modify-write cycles do not interleave.
func (c *CartSessions) Open(ctx context.Context, sessionID string) (cart *CartStore, release func()) {
	mu := c.stripe(sessionID)
	mu.Lock()
	return c.Get(ctx, sessionID), mu.Unlock
}

func (c *CartSessions) stripe(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &c.stripes[h.Sum32()%cartSessionStripes]
}
