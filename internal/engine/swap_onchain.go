package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/money"
)

// onChainSwapEngine drives swaps funded from a non-custodial UTXO
// account into a custodial trading account: coin selection pays for an
// on-chain deposit to the quote's deposit address, and the backend
// settles the swap from there.
type onChainSwapEngine struct {
	utxo *utxoSendEngine
}

func newOnChainSwapEngine(source, target account.Account, deps Dependencies) (*onChainSwapEngine, error) {
	if deps.Quotes == nil {
		return nil, fmt.Errorf("on-chain swap engine: missing quote dependency")
	}
	// Same funding mechanics as a UTXO send; the engine composes them
	// with quote handling rather than duplicating the selection loop.
	utxo, err := newUTXOSendEngine(source, target, deps)
	if err != nil {
		return nil, fmt.Errorf("on-chain swap engine: %w", err)
	}
	return &onChainSwapEngine{utxo: utxo}, nil
}

func (e *onChainSwapEngine) AssertInputsValid() {
	if !e.utxo.source.Chain.IsUTXO() {
		panic(fmt.Sprintf("on-chain swap engine wired with non-UTXO chain %s", e.utxo.source.Chain))
	}
	if e.utxo.source.Currency.Equal(e.utxo.target.Currency) {
		panic(fmt.Sprintf("swap source and target must differ, both %s", e.utxo.source.Currency.Code))
	}
}

func (e *onChainSwapEngine) AvailableFeeLevels() []FeeLevel {
	return e.utxo.AvailableFeeLevels()
}

func (e *onChainSwapEngine) pair() Pair {
	return Pair{Base: e.utxo.source.Currency, Counter: e.utxo.target.Currency}
}

func (e *onChainSwapEngine) InitializeTransaction(ctx context.Context) (PendingTransaction, error) {
	return e.utxo.InitializeTransaction(ctx)
}

func (e *onChainSwapEngine) UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error) {
	next, err := e.utxo.UpdateAmount(ctx, pt, amount)
	if err != nil {
		return pt, err
	}
	next.Meta.Quote = nil
	if next.Amount.IsZero() {
		return next, nil
	}

	quote, err := e.utxo.deps.Quotes.Quote(ctx, DirectionSwap, e.pair(), next.Amount)
	if err != nil {
		return pt, fmt.Errorf("failed to fetch quote: %w", err)
	}
	next.Meta.Quote = &quote
	return next, nil
}

func (e *onChainSwapEngine) UpdateFeeLevel(ctx context.Context, pt PendingTransaction, level FeeLevel, custom *money.Value) (PendingTransaction, error) {
	return e.utxo.UpdateFeeLevel(ctx, pt, level, custom)
}

func (e *onChainSwapEngine) ValidateAmount(ctx context.Context, pt PendingTransaction) error {
	if err := e.utxo.ValidateAmount(ctx, pt); err != nil {
		return err
	}
	if pt.Meta.Quote != nil && !pt.Meta.Quote.MinAmount.IsZero() &&
		pt.Amount.Cmp(pt.Meta.Quote.MinAmount) < 0 {
		return &ValidationError{Code: BelowMinimum, Bound: pt.Meta.Quote.MinAmount}
	}
	return nil
}

func (e *onChainSwapEngine) Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error) {
	if err := e.ValidateAmount(ctx, pt); err != nil {
		return TransactionResult{}, err
	}
	if pt.Meta.Quote == nil {
		return TransactionResult{}, ErrNoQuote
	}
	if pt.Meta.Quote.Expired(time.Now()) {
		return TransactionResult{}, ErrQuoteExpired
	}
	if pt.Meta.Quote.DepositAddress == "" {
		return TransactionResult{}, fmt.Errorf("quote %s carries no deposit address", pt.Meta.Quote.ID)
	}

	target, err := pt.Amount.Uint64()
	if err != nil {
		return TransactionResult{}, fmt.Errorf("invalid amount: %w", err)
	}

	snap, err := e.utxo.fetch(ctx)
	if err != nil {
		return TransactionResult{}, err
	}
	rate, err := e.utxo.feeRate(pt.FeeSelection, snap.rates)
	if err != nil {
		return TransactionResult{}, err
	}
	selection, err := e.utxo.deps.Selector.Select(snap.utxos, target, rate, 1, e.utxo.deps.SelectPolicy)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("coin selection failed: %w", err)
	}

	txHash, err := e.utxo.deps.UTXOSubmit.Submit(
		ctx,
		e.utxo.source.Chain,
		selection,
		e.utxo.source.Address,
		pt.Meta.Quote.DepositAddress,
		target,
	)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("failed to submit deposit: %w", err)
	}

	e.utxo.log.WithField("txHash", txHash).Info("on-chain swap deposit submitted")
	return Hashed(txHash, pt.Amount), nil
}
