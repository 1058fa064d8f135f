package feerate

import (
	"context"
	"sync"
	"time"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/engine"
)

type cacheEntry struct {
	rates     engine.FeeRates
	fetchedAt time.Time
}

// CachedProvider memoizes fee rates per chain for a fixed TTL so that
// repeated amount edits do not hammer the upstream service.
type CachedProvider struct {
	next engine.FeeRateProvider
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[asset.Chain]cacheEntry
}

func NewCachedProvider(next engine.FeeRateProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[asset.Chain]cacheEntry),
	}
}

func (p *CachedProvider) CurrentFeeRates(ctx context.Context, chain asset.Chain) (engine.FeeRates, error) {
	p.mu.Lock()
	entry, ok := p.entries[chain]
	p.mu.Unlock()

	if ok && p.now().Sub(entry.fetchedAt) < p.ttl {
		return entry.rates, nil
	}

	// An expired entry is never substituted for a failed fetch; the
	// caller retries against live rates or surfaces the error.
	rates, err := p.next.CurrentFeeRates(ctx, chain)
	if err != nil {
		return engine.FeeRates{}, err
	}

	p.mu.Lock()
	p.entries[chain] = cacheEntry{rates: rates, fetchedAt: p.now()}
	p.mu.Unlock()

	return rates, nil
}
