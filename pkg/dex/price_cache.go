package dex

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// PriceCache is the read-through display price cache. Writes are
// last-response-wins by arrival order, not request-issue order: a refresh
// racing the periodic poll may briefly show a stale price that the later
// arrival overwrites. Consumers must tolerate that flicker and never assume
// monotonic freshness.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]priceEntry
}

type priceEntry struct {
	price     decimal.Decimal
	updatedAt time.Time
}

// NewPriceCache creates an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[string]priceEntry)}
}

// Set unconditionally overwrites the entry; arrival order decides.
func (pc *PriceCache) Set(key string, price decimal.Decimal) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.entries[key] = priceEntry{price: price, updatedAt: time.Now()}
}

// Get returns the last-known price and when it arrived.
func (pc *PriceCache) Get(key string) (decimal.Decimal, time.Time, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	entry, ok := pc.entries[key]
	return entry.price, entry.updatedAt, ok
}

// Size returns the number of cached prices.
func (pc *PriceCache) Size() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.entries)
}
