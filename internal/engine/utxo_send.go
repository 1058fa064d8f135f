package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/txsize"
)

// utxoSendEngine drives non-custodial sends on UTXO chains. The fee is
// produced by coin selection, so every amount or fee-level change
// re-runs the selector against a fresh UTXO snapshot.
type utxoSendEngine struct {
	base
	est *txsize.Estimator
}

func newUTXOSendEngine(source, target account.Account, deps Dependencies) (*utxoSendEngine, error) {
	if deps.Balances == nil || deps.Unspents == nil || deps.FeeRates == nil ||
		deps.Selector == nil || deps.Estimator == nil {
		return nil, fmt.Errorf("utxo send engine: missing balance/unspent/fee-rate dependencies")
	}
	if deps.UTXOSubmit == nil {
		return nil, fmt.Errorf("utxo send engine: missing submitter")
	}
	return &utxoSendEngine{
		base: newBase(source, target, "utxo_send", deps),
		est:  deps.Estimator,
	}, nil
}

func (e *utxoSendEngine) AssertInputsValid() {
	if !e.source.Chain.IsUTXO() {
		panic(fmt.Sprintf("utxo send engine wired with non-UTXO chain %s", e.source.Chain))
	}
	if !e.source.Currency.Equal(e.target.Currency) {
		panic(fmt.Sprintf("asset mismatch: source %s, target %s",
			e.source.Currency.Code, e.target.Currency.Code))
	}
	if e.target.Address == "" {
		panic("utxo send engine wired with empty target address")
	}
}

func (e *utxoSendEngine) AvailableFeeLevels() []FeeLevel {
	return []FeeLevel{FeeLevelRegular, FeeLevelPriority, FeeLevelCustom}
}

// snapshot is one consistent read of everything a recompute needs.
type utxoSnapshot struct {
	balance money.Value
	utxos   []coinselect.UnspentOutput
	rates   FeeRates
}

func (e *utxoSendEngine) fetch(ctx context.Context) (utxoSnapshot, error) {
	var snap utxoSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balance, err := e.deps.Balances.ActionableBalance(gctx, e.source)
		if err != nil {
			return fmt.Errorf("failed to fetch balance: %w", err)
		}
		snap.balance = balance
		return nil
	})
	g.Go(func() error {
		utxos, err := e.deps.Unspents.UnspentOutputs(gctx, e.source)
		if err != nil {
			return fmt.Errorf("failed to fetch unspent outputs: %w", err)
		}
		snap.utxos = utxos
		return nil
	})
	g.Go(func() error {
		rates, err := e.deps.FeeRates.CurrentFeeRates(gctx, e.source.Chain)
		if err != nil {
			return fmt.Errorf("failed to fetch fee rates: %w", err)
		}
		snap.rates = rates
		return nil
	})

	if err := g.Wait(); err != nil {
		return utxoSnapshot{}, err
	}
	return snap, nil
}

// feeRate resolves the per-byte rate for the selected fee level.
func (e *utxoSendEngine) feeRate(sel FeeSelection, rates FeeRates) (txsize.Fee, error) {
	switch sel.SelectedLevel {
	case FeeLevelRegular:
		return rates.Regular, nil
	case FeeLevelPriority:
		return rates.Priority, nil
	case FeeLevelCustom:
		if sel.CustomAmount == nil {
			return txsize.Fee{}, fmt.Errorf("custom fee level selected without custom amount")
		}
		perByte, err := sel.CustomAmount.Uint64()
		if err != nil {
			return txsize.Fee{}, fmt.Errorf("invalid custom fee rate: %w", err)
		}
		return txsize.Fee{PerByte: perByte}, nil
	default:
		return txsize.Fee{}, fmt.Errorf("fee level %s not supported for utxo send", sel.SelectedLevel)
	}
}

func (e *utxoSendEngine) InitializeTransaction(ctx context.Context) (PendingTransaction, error) {
	snap, err := e.fetch(ctx)
	if err != nil {
		return PendingTransaction{}, err
	}

	feeSelection := FeeSelection{
		SelectedLevel:   FeeLevelRegular,
		AvailableLevels: e.AvailableFeeLevels(),
	}

	pt := PendingTransaction{
		Amount:       money.Zero(e.source.Currency),
		FeeAmount:    money.Zero(e.source.Currency),
		FeeSelection: feeSelection,
		SelectedFiat: e.deps.Fiat,
	}
	return e.recompute(pt, pt.Amount, snap)
}

// recompute derives fee, available balance and feeForFullAvailable
// from a snapshot, running the selector when an amount is entered.
func (e *utxoSendEngine) recompute(pt PendingTransaction, amount money.Value, snap utxoSnapshot) (PendingTransaction, error) {
	rate, err := e.feeRate(pt.FeeSelection, snap.rates)
	if err != nil {
		return pt, err
	}

	sweepFee := e.deps.Selector.SweepFee(snap.utxos, rate, 1, e.deps.SelectPolicy)
	feeForFull := money.NewValueFromUint64(sweepFee, e.source.Currency)

	// The reported balance can include outputs the selection policy
	// excludes; the spendable bound never exceeds what the selector is
	// permitted to spend.
	balance := snap.balance
	spendable := money.NewValueFromUint64(
		coinselect.SpendableSum(snap.utxos, e.deps.SelectPolicy), e.source.Currency)
	if balance.Cmp(spendable) > 0 {
		balance = spendable
	}
	available := balance.Sub(feeForFull).ClampToZero()

	next := pt.WithoutConfirmations()
	next.Amount = amount
	next.Available = available
	next.FeeForFullAvailable = feeForFull
	next.Meta.Selection = nil

	if amount.IsZero() {
		next.FeeAmount = money.Zero(e.source.Currency)
		return next, nil
	}
	if err := checkAboveAvailable(amount, available); err != nil {
		return pt, err
	}

	target, err := amount.Uint64()
	if err != nil {
		return pt, fmt.Errorf("invalid target amount: %w", err)
	}

	selection, err := e.deps.Selector.Select(snap.utxos, target, rate, 1, e.deps.SelectPolicy)
	if err != nil {
		return pt, fmt.Errorf("coin selection failed: %w", err)
	}

	metrics.RecordCoinSelection(len(selection.Outputs), selection.AbsoluteFee)

	next.FeeAmount = money.NewValueFromUint64(selection.AbsoluteFee, e.source.Currency)
	next.Meta.Selection = &selection
	return next, nil
}

func (e *utxoSendEngine) UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error) {
	e.assertCurrency(amount)
	amount = amount.ClampToZero()

	snap, err := e.fetch(ctx)
	if err != nil {
		return pt, err
	}

	return e.recompute(pt, amount, snap)
}

func (e *utxoSendEngine) UpdateFeeLevel(ctx context.Context, pt PendingTransaction, level FeeLevel, custom *money.Value) (PendingTransaction, error) {
	if !pt.FeeSelection.Allows(level) {
		return pt, &ValidationError{Code: InvalidFeeLevel, Bound: money.Zero(e.source.Currency)}
	}
	if level == FeeLevelCustom && custom == nil {
		return pt, fmt.Errorf("custom fee level requires a custom amount")
	}

	pt.FeeSelection.SelectedLevel = level
	pt.FeeSelection.CustomAmount = custom

	snap, err := e.fetch(ctx)
	if err != nil {
		return pt, err
	}
	return e.recompute(pt, pt.Amount, snap)
}

func (e *utxoSendEngine) ValidateAmount(ctx context.Context, pt PendingTransaction) error {
	rates, err := e.deps.FeeRates.CurrentFeeRates(ctx, e.source.Chain)
	if err != nil {
		return fmt.Errorf("failed to fetch fee rates: %w", err)
	}
	rate, err := e.feeRate(pt.FeeSelection, rates)
	if err != nil {
		return err
	}

	dust := money.NewValueFromUint64(e.est.DustThreshold(rate), e.source.Currency)

	if !pt.Amount.IsPositive() {
		return &ValidationError{Code: BelowMinimum, Bound: dust}
	}
	if pt.Amount.Cmp(dust) < 0 {
		return &ValidationError{Code: BelowDust, Bound: dust}
	}
	return checkAboveAvailable(pt.Amount, pt.Available)
}

func (e *utxoSendEngine) Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error) {
	if err := e.ValidateAmount(ctx, pt); err != nil {
		return TransactionResult{}, err
	}

	target, err := pt.Amount.Uint64()
	if err != nil {
		return TransactionResult{}, fmt.Errorf("invalid amount: %w", err)
	}

	// Final pass against a fresh snapshot; the selection cached on the
	// pending transaction may predate a wallet change.
	snap, err := e.fetch(ctx)
	if err != nil {
		return TransactionResult{}, err
	}
	rate, err := e.feeRate(pt.FeeSelection, snap.rates)
	if err != nil {
		return TransactionResult{}, err
	}

	selection, err := e.deps.Selector.Select(snap.utxos, target, rate, 1, e.deps.SelectPolicy)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("coin selection failed: %w", err)
	}

	txHash, err := e.deps.UTXOSubmit.Submit(ctx, e.source.Chain, selection, e.source.Address, e.target.Address, target)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("failed to submit transaction: %w", err)
	}

	e.log.WithField("txHash", txHash).Info("utxo send submitted")
	return Hashed(txHash, pt.Amount), nil
}
