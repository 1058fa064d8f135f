package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/money"
)

// tradingSwapEngine drives custodial-to-custodial swaps. The backend
// owns fees and execution; the engine's job is quote freshness, limit
// validation and order creation.
type tradingSwapEngine struct {
	base
}

func newTradingSwapEngine(source, target account.Account, deps Dependencies) (*tradingSwapEngine, error) {
	if deps.Balances == nil || deps.Quotes == nil || deps.Orders == nil {
		return nil, fmt.Errorf("trading swap engine: missing balance/quote/order dependencies")
	}
	return &tradingSwapEngine{base: newBase(source, target, "trading_swap", deps)}, nil
}

func (e *tradingSwapEngine) AssertInputsValid() {
	if e.source.Currency.Equal(e.target.Currency) {
		panic(fmt.Sprintf("swap source and target must differ, both %s", e.source.Currency.Code))
	}
	if e.source.Currency.Fiat || e.target.Currency.Fiat {
		panic("swap pair must be crypto to crypto")
	}
}

func (e *tradingSwapEngine) AvailableFeeLevels() []FeeLevel {
	// Fees come from the quote; there is nothing for the user to pick.
	return []FeeLevel{FeeLevelNone}
}

func (e *tradingSwapEngine) pair() Pair {
	return Pair{Base: e.source.Currency, Counter: e.target.Currency}
}

func (e *tradingSwapEngine) InitializeTransaction(ctx context.Context) (PendingTransaction, error) {
	balance, err := e.deps.Balances.ActionableBalance(ctx, e.source)
	if err != nil {
		return PendingTransaction{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	return PendingTransaction{
		Amount:              money.Zero(e.source.Currency),
		Available:           balance,
		FeeAmount:           money.Zero(e.source.Currency),
		FeeForFullAvailable: money.Zero(e.source.Currency),
		FeeSelection: FeeSelection{
			SelectedLevel:   FeeLevelNone,
			AvailableLevels: e.AvailableFeeLevels(),
		},
		SelectedFiat: e.deps.Fiat,
	}, nil
}

func (e *tradingSwapEngine) UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error) {
	e.assertCurrency(amount)
	amount = amount.ClampToZero()

	balance, err := e.deps.Balances.ActionableBalance(ctx, e.source)
	if err != nil {
		return pt, fmt.Errorf("failed to fetch balance: %w", err)
	}

	next := pt.WithoutConfirmations()
	next.Amount = amount
	next.Available = balance
	next.Meta.Quote = nil

	if amount.IsZero() {
		next.FeeAmount = money.Zero(e.source.Currency)
		return next, nil
	}
	if err := checkAboveAvailable(amount, balance); err != nil {
		return pt, err
	}

	quote, err := e.deps.Quotes.Quote(ctx, DirectionSwap, e.pair(), amount)
	if err != nil {
		return pt, fmt.Errorf("failed to fetch quote: %w", err)
	}

	next.FeeAmount = quote.Fee
	next.Meta.Quote = &quote
	return next, nil
}

func (e *tradingSwapEngine) UpdateFeeLevel(_ context.Context, pt PendingTransaction, level FeeLevel, _ *money.Value) (PendingTransaction, error) {
	if !pt.FeeSelection.Allows(level) {
		return pt, &ValidationError{Code: InvalidFeeLevel, Bound: money.Zero(e.source.Currency)}
	}
	// Only FeeLevelNone is available; nothing to recompute.
	return pt, nil
}

func (e *tradingSwapEngine) ValidateAmount(ctx context.Context, pt PendingTransaction) error {
	if !pt.Amount.IsPositive() {
		min := money.Zero(e.source.Currency)
		if pt.Meta.Quote != nil {
			min = pt.Meta.Quote.MinAmount
		}
		return &ValidationError{Code: BelowMinimum, Bound: min}
	}
	if pt.Meta.Quote != nil && !pt.Meta.Quote.MinAmount.IsZero() &&
		pt.Amount.Cmp(pt.Meta.Quote.MinAmount) < 0 {
		return &ValidationError{Code: BelowMinimum, Bound: pt.Meta.Quote.MinAmount}
	}
	if err := checkAboveAvailable(pt.Amount, pt.Available); err != nil {
		return err
	}
	return e.validateLimits(ctx, pt.Amount, DirectionSwap)
}

func (e *tradingSwapEngine) Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error) {
	if err := e.ValidateAmount(ctx, pt); err != nil {
		return TransactionResult{}, err
	}
	if pt.Meta.Quote == nil {
		return TransactionResult{}, ErrNoQuote
	}
	if pt.Meta.Quote.Expired(time.Now()) {
		return TransactionResult{}, ErrQuoteExpired
	}

	res, err := e.deps.Orders.CreateOrder(ctx, OrderRequest{
		Direction:      DirectionSwap,
		QuoteID:        pt.Meta.Quote.ID,
		Amount:         pt.Amount,
		IdempotencyKey: uuid.New().String(),
	})
	if err != nil {
		return TransactionResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	e.log.WithField("orderID", res.OrderID).Info("trading swap order created")
	if res.TxHash != "" {
		return Hashed(res.TxHash, pt.Amount), nil
	}
	return UnHashed(pt.Amount), nil
}
