package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/money"
)

type swapFixture struct {
	engine   Engine
	balances *fakeBalances
	quotes   *fakeQuotes
	orders   *fakeOrders
	limits   *fakeLimits
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()

	f := &swapFixture{
		balances: &fakeBalances{balance: btcValue(100_000)},
		quotes: &fakeQuotes{quote: Quote{
			ID:        "quote-1",
			Rate:      big.NewRat(15, 1),
			Fee:       btcValue(150),
			MinAmount: btcValue(1000),
			ExpiresAt: time.Now().Add(time.Minute),
		}},
		orders: &fakeOrders{result: OrderResult{OrderID: "order-1"}},
		limits: &fakeLimits{},
	}
	deps := Dependencies{
		Balances: f.balances,
		Quotes:   f.quotes,
		Orders:   f.orders,
		Limits:   f.limits,
		Fiat:     money.USD,
	}

	source := account.NewTrading(asset.Bitcoin, btcCurrency)
	target := account.NewTrading(asset.Ethereum, ethCurrency)
	eng, err := New(source, target, ActionSwap, deps)
	require.NoError(t, err)
	f.engine = eng
	return f
}

func TestTradingSwapInitialize(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)

	assert.Equal(t, btcValue(100_000), pt.Available)
	assert.True(t, pt.FeeAmount.IsZero())
	assert.Equal(t, FeeLevelNone, pt.FeeSelection.SelectedLevel)
	assert.Equal(t, []FeeLevel{FeeLevelNone}, pt.FeeSelection.AvailableLevels)
	assert.Empty(t, f.quotes.calls)
}

func TestTradingSwapUpdateAmountFetchesQuote(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)

	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(10_000))
	require.NoError(t, err)

	assert.Equal(t, btcValue(150), pt.FeeAmount)
	require.NotNil(t, pt.Meta.Quote)
	assert.Equal(t, "quote-1", pt.Meta.Quote.ID)
	require.Len(t, f.quotes.calls, 1)
	assert.Equal(t, btcValue(10_000), f.quotes.calls[0])
}

func TestTradingSwapZeroAmountSkipsQuote(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)

	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(0))
	require.NoError(t, err)

	assert.Nil(t, pt.Meta.Quote)
	assert.Empty(t, f.quotes.calls)
}

func TestTradingSwapValidateBelowQuoteMinimum(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(500))
	require.NoError(t, err)

	err = f.engine.ValidateAmount(context.Background(), pt)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, BelowMinimum, ve.Code)
	assert.Equal(t, btcValue(1000), ve.Bound)
}

func TestTradingSwapValidateLimits(t *testing.T) {
	f := newSwapFixture(t)
	f.limits.limits = Limits{DailyRemaining: btcValue(5000)}

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(10_000))
	require.NoError(t, err)

	err = f.engine.ValidateAmount(context.Background(), pt)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, LimitsExceeded, ve.Code)
	assert.Equal(t, btcValue(5000), ve.Bound)
}

func TestTradingSwapExecute(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(10_000))
	require.NoError(t, err)

	res, err := f.engine.Execute(context.Background(), pt)
	require.NoError(t, err)

	// Custodial swaps settle off-chain; there is no hash to track.
	assert.False(t, res.IsHashed())
	assert.Equal(t, btcValue(10_000), res.Amount)

	require.Len(t, f.orders.requests, 1)
	req := f.orders.requests[0]
	assert.Equal(t, DirectionSwap, req.Direction)
	assert.Equal(t, "quote-1", req.QuoteID)
	assert.Equal(t, btcValue(10_000), req.Amount)
	assert.NotEmpty(t, req.IdempotencyKey)
}

func TestTradingSwapExecuteWithoutQuote(t *testing.T) {
	f := newSwapFixture(t)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)

	// Skip UpdateAmount so no quote was ever fetched.
	pt.Amount = btcValue(10_000)
	_, err = f.engine.Execute(context.Background(), pt)
	assert.ErrorIs(t, err, ErrNoQuote)
	assert.Empty(t, f.orders.requests)
}

func TestTradingSwapExecuteExpiredQuote(t *testing.T) {
	f := newSwapFixture(t)
	f.quotes.quote.ExpiresAt = time.Now().Add(-time.Second)

	pt, err := f.engine.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = f.engine.UpdateAmount(context.Background(), pt, btcValue(10_000))
	require.NoError(t, err)

	_, err = f.engine.Execute(context.Background(), pt)
	assert.ErrorIs(t, err, ErrQuoteExpired)
	assert.Empty(t, f.orders.requests)
}

func TestTradingSwapAssertInputsValid(t *testing.T) {
	f := newSwapFixture(t)
	assert.NotPanics(t, f.engine.AssertInputsValid)

	deps := Dependencies{Balances: f.balances, Quotes: f.quotes, Orders: f.orders}
	same := account.NewTrading(asset.Bitcoin, btcCurrency)
	eng, err := New(same, same, ActionSwap, deps)
	require.NoError(t, err)
	assert.Panics(t, eng.AssertInputsValid)
}
