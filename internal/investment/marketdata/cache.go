package marketdata

import (
	"fmt"
	"sync"
	"time"
)

// cacheTTL keeps quotes fresh enough for mark-to-market display while staying
// well inside the free-tier rate limits of the upstream APIs.
const cacheTTL = 5 * time.Minute

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// priceCache is an in-memory TTL cache keyed by symbol, currency and asset
// type. Asset type is part of the key on purpose: a Cedear and the underlying
// US stock share a symbol but quote at very different prices.
type priceCache struct {
	mu      sync.RWMutex
	entries map[string]cachedPrice
	now     func() time.Time
}

func newPriceCache() *priceCache {
	return &priceCache{
		entries: make(map[string]cachedPrice),
		now:     time.Now,
	}
}

func cacheKey(symbol, currency, assetType string) string {
	return fmt.Sprintf("%s_%s_%s", symbol, currency, assetType)
}

func (c *priceCache) get(symbol, currency, assetType string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[cacheKey(symbol, currency, assetType)]
	if !exists || c.now().Sub(entry.fetchedAt) > cacheTTL {
		return 0, false
	}
	return entry.price, true
}

func (c *priceCache) set(symbol, currency, assetType string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepExpiredLocked()
	c.entries[cacheKey(symbol, currency, assetType)] = cachedPrice{price: price, fetchedAt: c.now()}
}

func (c *priceCache) sweepExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.fetchedAt) > cacheTTL {
			delete(c.entries, key)
		}
	}
}
