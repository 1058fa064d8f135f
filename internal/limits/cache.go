package limits

import (
	"context"
	"sync"
	"time"

	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/money"
)

type cacheKey struct {
	currency  string
	direction engine.Direction
}

type cacheEntry struct {
	limits    engine.Limits
	fetchedAt time.Time
}

// CachedProvider memoizes limits per currency and direction for a
// fixed TTL.
type CachedProvider struct {
	next engine.LimitsProvider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
}

func NewCachedProvider(next engine.LimitsProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (p *CachedProvider) Limits(
	ctx context.Context,
	currency money.Currency,
	direction engine.Direction,
) (engine.Limits, error) {
	key := cacheKey{currency: currency.Code, direction: direction}

	p.mu.Lock()
	entry, ok := p.entries[key]
	p.mu.Unlock()

	if ok && p.now().Sub(entry.fetchedAt) < p.ttl {
		return entry.limits, nil
	}

	limits, err := p.next.Limits(ctx, currency, direction)
	if err != nil {
		return engine.Limits{}, err
	}

	p.mu.Lock()
	p.entries[key] = cacheEntry{limits: limits, fetchedAt: p.now()}
	p.mu.Unlock()

	return limits, nil
}

// Invalidate drops the cached entry after an order settles.
func (p *CachedProvider) Invalidate(currency money.Currency, direction engine.Direction) {
	p.mu.Lock()
	delete(p.entries, cacheKey{currency: currency.Code, direction: direction})
	p.mu.Unlock()
}
