package cache

import (
	"context"
	"sync"
	"time"

	apptreasury "github.com/erp/realestate/internal/application/treasury"
	"github.com/erp/realestate/internal/domain/treasury"
	"github.com/google/uuid"
)

type balanceKey struct {
	tenantID uuid.UUID
	safeID   uuid.UUID
}

type balanceEntry struct {
	balance   treasury.Balance
	expiresAt time.Time
}

// InMemoryBalanceCache is the single-instance balance cache. Entries expire
// after the TTL and a background loop sweeps them.
type InMemoryBalanceCache struct {
	mu          sync.RWMutex
	entries     map[balanceKey]balanceEntry
	generations map[balanceKey]uint64
	ttl         time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryBalanceCache creates the cache and starts its cleanup loop
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	c := &InMemoryBalanceCache{
		entries:     make(map[balanceKey]balanceEntry),
		generations: make(map[balanceKey]uint64),
		ttl:         ttl,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns the cached balance if present and not expired. A miss carries
// the safe's generation for the following Set.
func (c *InMemoryBalanceCache) Get(_ context.Context, tenantID, safeID uuid.UUID) (*treasury.Balance, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	k := balanceKey{tenantID, safeID}
	e, ok := c.entries[k]
	if !ok || c.now().After(e.expiresAt) {
		return nil, c.generations[k], false
	}
	b := e.balance
	return &b, c.generations[k], true
}

// Set stores a balance unless the safe was invalidated since generation was read
func (c *InMemoryBalanceCache) Set(_ context.Context, tenantID uuid.UUID, generation uint64, balance treasury.Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := balanceKey{tenantID, balance.SafeID}
	if c.generations[k] != generation {
		return
	}
	c.entries[k] = balanceEntry{
		balance:   balance,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate removes the given safes and bumps their generation
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, tenantID uuid.UUID, safeIDs ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range safeIDs {
		k := balanceKey{tenantID, id}
		delete(c.entries, k)
		c.generations[k]++
	}
}

// Close stops the cleanup loop. Safe to call multiple times.
func (c *InMemoryBalanceCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryBalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryBalanceCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryBalanceCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

var _ apptreasury.BalanceCache = (*InMemoryBalanceCache)(nil)
