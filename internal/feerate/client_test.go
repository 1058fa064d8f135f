package feerate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/txsize"
)

func TestCurrentFeeRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bitcoin/api/v1/fees/recommended", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fastestFee":40,"halfHourFee":20,"hourFee":10,"minimumFee":2}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rates, err := c.CurrentFeeRates(context.Background(), asset.Bitcoin)
	require.NoError(t, err)

	assert.Equal(t, uint64(20), rates.Regular.PerByte)
	assert.Equal(t, uint64(40), rates.Priority.PerByte)
}

func TestCurrentFeeRatesFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Sparse chains report zero for the mid tiers.
		_, _ = w.Write([]byte(`{"fastestFee":1,"halfHourFee":0,"hourFee":0,"minimumFee":3}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rates, err := c.CurrentFeeRates(context.Background(), asset.Dogecoin)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), rates.Regular.PerByte)
	// Priority never undercuts regular.
	assert.Equal(t, uint64(3), rates.Priority.PerByte)
}

func TestCurrentFeeRatesUnsupportedChain(t *testing.T) {
	c := NewClient("http://localhost")
	_, err := c.CurrentFeeRates(context.Background(), asset.Ethereum)
	assert.Error(t, err)
}

type countingProvider struct {
	calls atomic.Int64
	rates engine.FeeRates
	err   error
}

func (p *countingProvider) CurrentFeeRates(_ context.Context, _ asset.Chain) (engine.FeeRates, error) {
	p.calls.Add(1)
	if p.err != nil {
		return engine.FeeRates{}, p.err
	}
	return p.rates, nil
}

func TestCachedProviderServesWithinTTL(t *testing.T) {
	upstream := &countingProvider{rates: engine.FeeRates{
		Regular:  txsize.Fee{PerByte: 10},
		Priority: txsize.Fee{PerByte: 20},
	}}
	p := NewCachedProvider(upstream, time.Minute)

	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		rates, err := p.CurrentFeeRates(context.Background(), asset.Bitcoin)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), rates.Regular.PerByte)
	}
	assert.Equal(t, int64(1), upstream.calls.Load())

	// Chains are cached independently.
	_, err := p.CurrentFeeRates(context.Background(), asset.Litecoin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), upstream.calls.Load())

	// Past the TTL the upstream is consulted again.
	now = now.Add(2 * time.Minute)
	_, err = p.CurrentFeeRates(context.Background(), asset.Bitcoin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), upstream.calls.Load())
}

func TestCachedProviderNeverServesExpiredRates(t *testing.T) {
	upstream := &countingProvider{rates: engine.FeeRates{Regular: txsize.Fee{PerByte: 10}}}
	p := NewCachedProvider(upstream, time.Minute)

	now := time.Unix(1_700_000_000, 0)
	p.now = func() time.Time { return now }

	_, err := p.CurrentFeeRates(context.Background(), asset.Bitcoin)
	require.NoError(t, err)

	// Past the TTL a failing upstream surfaces the error; the expired
	// entry is not substituted.
	now = now.Add(2 * time.Minute)
	upstream.err = errors.New("upstream down")
	_, err = p.CurrentFeeRates(context.Background(), asset.Bitcoin)
	assert.Error(t, err)

	// Once the upstream recovers, fresh rates flow again.
	upstream.err = nil
	upstream.rates = engine.FeeRates{Regular: txsize.Fee{PerByte: 15}}
	rates, err := p.CurrentFeeRates(context.Background(), asset.Bitcoin)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), rates.Regular.PerByte)
}
