package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/money"
)

// orderEngine drives the fully custodial actions: buy, sell, bank
// deposit/withdraw and interest deposits. One implementation covers
// them all; the mechanics (balance, limits, an optional quote, then
// order creation) are identical, and only the direction and whether a
// quote is needed vary per action.
type orderEngine struct {
	base
	direction Direction
}

func newOrderEngine(source, target account.Account, direction Direction, deps Dependencies) (*orderEngine, error) {
	if deps.Balances == nil || deps.Orders == nil {
		return nil, fmt.Errorf("%s engine: missing balance/order dependencies", direction)
	}
	if direction.quoted() && deps.Quotes == nil {
		return nil, fmt.Errorf("%s engine: missing quote dependency", direction)
	}
	return &orderEngine{
		base:      newBase(source, target, string(direction), deps),
		direction: direction,
	}, nil
}

// quoted reports whether the direction trades across currencies and
// therefore needs a rate quote.
func (d Direction) quoted() bool {
	return d == DirectionBuy || d == DirectionSell
}

func (e *orderEngine) AssertInputsValid() {
	switch e.direction {
	case DirectionBuy:
		if !e.source.Currency.Fiat || e.target.Currency.Fiat {
			panic(fmt.Sprintf("buy requires fiat -> crypto, got %s -> %s",
				e.source.Currency.Code, e.target.Currency.Code))
		}
	case DirectionSell:
		if e.source.Currency.Fiat || !e.target.Currency.Fiat {
			panic(fmt.Sprintf("sell requires crypto -> fiat, got %s -> %s",
				e.source.Currency.Code, e.target.Currency.Code))
		}
	default:
		if !e.source.Currency.Equal(e.target.Currency) {
			panic(fmt.Sprintf("%s requires matching currencies, got %s -> %s",
				e.direction, e.source.Currency.Code, e.target.Currency.Code))
		}
	}
}

func (e *orderEngine) AvailableFeeLevels() []FeeLevel {
	// Custodial paths expose no fee choice; the backend prices the
	// order, surfaced as FeeAmount from the quote where applicable.
	return []FeeLevel{FeeLevelNone}
}

func (e *orderEngine) pair() Pair {
	return Pair{Base: e.source.Currency, Counter: e.target.Currency}
}

func (e *orderEngine) InitializeTransaction(ctx context.Context) (PendingTransaction, error) {
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

func (e *orderEngine) UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error) {
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
	next.FeeAmount = money.Zero(e.source.Currency)

	if amount.IsZero() {
		return next, nil
	}
	if err := checkAboveAvailable(amount, balance); err != nil {
		return pt, err
	}

	if e.direction.quoted() {
		quote, er := e.deps.Quotes.Quote(ctx, e.direction, e.pair(), amount)
		if er != nil {
			return pt, fmt.Errorf("failed to fetch quote: %w", er)
		}
		next.FeeAmount = quote.Fee
		next.Meta.Quote = &quote
	}
	return next, nil
}

func (e *orderEngine) UpdateFeeLevel(_ context.Context, pt PendingTransaction, level FeeLevel, _ *money.Value) (PendingTransaction, error) {
	if !pt.FeeSelection.Allows(level) {
		return pt, &ValidationError{Code: InvalidFeeLevel, Bound: money.Zero(e.source.Currency)}
	}
	return pt, nil
}

func (e *orderEngine) ValidateAmount(ctx context.Context, pt PendingTransaction) error {
	if !pt.Amount.IsPositive() {
		return &ValidationError{Code: BelowMinimum, Bound: money.Zero(e.source.Currency)}
	}
	if err := checkAboveAvailable(pt.Amount, pt.Available); err != nil {
		return err
	}
	return e.validateLimits(ctx, pt.Amount, e.direction)
}

func (e *orderEngine) Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error) {
	if err := e.ValidateAmount(ctx, pt); err != nil {
		return TransactionResult{}, err
	}

	req := OrderRequest{
		Direction:      e.direction,
		Amount:         pt.Amount,
		IdempotencyKey: uuid.New().String(),
	}
	if e.direction.quoted() {
		if pt.Meta.Quote == nil {
			return TransactionResult{}, ErrNoQuote
		}
		if pt.Meta.Quote.Expired(time.Now()) {
			return TransactionResult{}, ErrQuoteExpired
		}
		req.QuoteID = pt.Meta.Quote.ID
	}

	res, err := e.deps.Orders.CreateOrder(ctx, req)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	e.log.WithField("orderID", res.OrderID).Infof("%s order created", e.direction)
	if res.TxHash != "" {
		return Hashed(res.TxHash, pt.Amount), nil
	}
	return UnHashed(pt.Amount), nil
}
