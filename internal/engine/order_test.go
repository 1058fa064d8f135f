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

func usdValue(amount int64) money.Value {
	return money.NewValue(big.NewInt(amount), money.USD)
}

type orderFixture struct {
	balances *fakeBalances
	quotes   *fakeQuotes
	orders   *fakeOrders
	limits   *fakeLimits
	deps     Dependencies
}

func newOrderFixture(balance money.Value) *orderFixture {
	f := &orderFixture{
		balances: &fakeBalances{balance: balance},
		quotes: &fakeQuotes{quote: Quote{
			ID:        "quote-buy",
			Rate:      big.NewRat(1, 45_000),
			Fee:       usdValue(99),
			ExpiresAt: time.Now().Add(time.Minute),
		}},
		orders: &fakeOrders{result: OrderResult{OrderID: "order-7"}},
		limits: &fakeLimits{},
	}
	f.deps = Dependencies{
		Balances: f.balances,
		Quotes:   f.quotes,
		Orders:   f.orders,
		Limits:   f.limits,
		Fiat:     money.USD,
	}
	return f
}

func TestBuyFetchesQuoteAndCreatesOrder(t *testing.T) {
	f := newOrderFixture(usdValue(500_00))

	source := account.NewTrading("", money.USD)
	target := account.NewTrading(asset.Bitcoin, btcCurrency)
	eng, err := New(source, target, ActionBuy, f.deps)
	require.NoError(t, err)
	assert.NotPanics(t, eng.AssertInputsValid)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usdValue(500_00), pt.Available)

	pt, err = eng.UpdateAmount(context.Background(), pt, usdValue(100_00))
	require.NoError(t, err)
	assert.Equal(t, usdValue(99), pt.FeeAmount)
	require.NotNil(t, pt.Meta.Quote)
	require.Len(t, f.quotes.calls, 1)

	res, err := eng.Execute(context.Background(), pt)
	require.NoError(t, err)
	assert.False(t, res.IsHashed())

	require.Len(t, f.orders.requests, 1)
	req := f.orders.requests[0]
	assert.Equal(t, DirectionBuy, req.Direction)
	assert.Equal(t, "quote-buy", req.QuoteID)
	assert.Equal(t, usdValue(100_00), req.Amount)
	assert.NotEmpty(t, req.IdempotencyKey)
}

func TestBuyExecuteWithoutQuote(t *testing.T) {
	f := newOrderFixture(usdValue(500_00))

	source := account.NewTrading("", money.USD)
	target := account.NewTrading(asset.Bitcoin, btcCurrency)
	eng, err := New(source, target, ActionBuy, f.deps)
	require.NoError(t, err)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)

	pt.Amount = usdValue(100_00)
	_, err = eng.Execute(context.Background(), pt)
	assert.ErrorIs(t, err, ErrNoQuote)
}

func TestSellRequiresCryptoSource(t *testing.T) {
	f := newOrderFixture(btcValue(100_000))

	source := account.NewTrading(asset.Bitcoin, btcCurrency)
	target := account.NewBank(money.USD, "checking")
	eng, err := New(source, target, ActionSell, f.deps)
	require.NoError(t, err)
	assert.NotPanics(t, eng.AssertInputsValid)

	// Fiat -> fiat is not a sell.
	_, err = New(account.NewTrading("", money.USD), target, ActionSell, f.deps)
	assert.Error(t, err)
}

func TestWithdrawSkipsQuote(t *testing.T) {
	f := newOrderFixture(usdValue(500_00))

	source := account.NewTrading("", money.USD)
	target := account.NewBank(money.USD, "checking")
	eng, err := New(source, target, ActionWithdraw, f.deps)
	require.NoError(t, err)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = eng.UpdateAmount(context.Background(), pt, usdValue(100_00))
	require.NoError(t, err)

	// Same-currency moves carry no rate quote and no fee.
	assert.Nil(t, pt.Meta.Quote)
	assert.True(t, pt.FeeAmount.IsZero())
	assert.Empty(t, f.quotes.calls)

	res, err := eng.Execute(context.Background(), pt)
	require.NoError(t, err)
	assert.False(t, res.IsHashed())

	require.Len(t, f.orders.requests, 1)
	assert.Equal(t, DirectionWithdraw, f.orders.requests[0].Direction)
	assert.Empty(t, f.orders.requests[0].QuoteID)
}

func TestDepositBankToTrading(t *testing.T) {
	f := newOrderFixture(usdValue(500_00))

	source := account.NewBank(money.USD, "checking")
	target := account.NewTrading("", money.USD)
	eng, err := New(source, target, ActionDeposit, f.deps)
	require.NoError(t, err)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = eng.UpdateAmount(context.Background(), pt, usdValue(50_00))
	require.NoError(t, err)

	res, err := eng.Execute(context.Background(), pt)
	require.NoError(t, err)
	assert.False(t, res.IsHashed())
	require.Len(t, f.orders.requests, 1)
	assert.Equal(t, DirectionDeposit, f.orders.requests[0].Direction)
}

func TestOrderValidateLimits(t *testing.T) {
	f := newOrderFixture(usdValue(10_000_00))
	f.limits.limits = Limits{
		Min: usdValue(10_00),
		Max: usdValue(1_000_00),
	}

	source := account.NewTrading("", money.USD)
	target := account.NewTrading(asset.Bitcoin, btcCurrency)
	eng, err := New(source, target, ActionBuy, f.deps)
	require.NoError(t, err)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)

	pt.Amount = usdValue(5_00)
	err = eng.ValidateAmount(context.Background(), pt)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, BelowMinimum, ve.Code)
	assert.Equal(t, usdValue(10_00), ve.Bound)

	pt.Amount = usdValue(2_000_00)
	err = eng.ValidateAmount(context.Background(), pt)
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, AboveMaximum, ve.Code)
	assert.Equal(t, usdValue(1_000_00), ve.Bound)
}

func TestOrderHashedResultWhenBackendReturnsHash(t *testing.T) {
	f := newOrderFixture(usdValue(500_00))
	f.orders.result = OrderResult{OrderID: "order-8", TxHash: "0xdeadbeef"}

	source := account.NewTrading("", money.USD)
	target := account.NewBank(money.USD, "checking")
	eng, err := New(source, target, ActionWithdraw, f.deps)
	require.NoError(t, err)

	pt, err := eng.InitializeTransaction(context.Background())
	require.NoError(t, err)
	pt, err = eng.UpdateAmount(context.Background(), pt, usdValue(100_00))
	require.NoError(t, err)

	res, err := eng.Execute(context.Background(), pt)
	require.NoError(t, err)
	assert.True(t, res.IsHashed())
	assert.Equal(t, "0xdeadbeef", res.TxHash)
}
