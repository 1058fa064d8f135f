package engine

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/money"
)

// accountSendEngine drives non-custodial sends on account-based
// chains. Fees are flat per-transfer quotes, not a function of the
// amount, so no selector is involved.
type accountSendEngine struct {
	base
}

func newAccountSendEngine(source, target account.Account, deps Dependencies) (*accountSendEngine, error) {
	if deps.Balances == nil || deps.AccountFees == nil {
		return nil, fmt.Errorf("account send engine: missing balance/fee dependencies")
	}
	if deps.AccountSubmit == nil {
		return nil, fmt.Errorf("account send engine: missing submitter")
	}
	return &accountSendEngine{base: newBase(source, target, "account_send", deps)}, nil
}

func (e *accountSendEngine) AssertInputsValid() {
	if !e.source.Chain.IsEvm() {
		panic(fmt.Sprintf("account send engine wired with non-account chain %s", e.source.Chain))
	}
	if !e.source.Currency.Equal(e.target.Currency) {
		panic(fmt.Sprintf("asset mismatch: source %s, target %s",
			e.source.Currency.Code, e.target.Currency.Code))
	}
	if e.target.Address == "" {
		panic("account send engine wired with empty target address")
	}
}

func (e *accountSendEngine) AvailableFeeLevels() []FeeLevel {
	return []FeeLevel{FeeLevelRegular, FeeLevelPriority, FeeLevelCustom}
}

func (e *accountSendEngine) fetch(ctx context.Context) (money.Value, TransferFees, error) {
	var (
		balance money.Value
		fees    TransferFees
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := e.deps.Balances.ActionableBalance(gctx, e.source)
		if err != nil {
			return fmt.Errorf("failed to fetch balance: %w", err)
		}
		balance = b
		return nil
	})
	g.Go(func() error {
		f, err := e.deps.AccountFees.TransferFees(gctx, e.source.Chain)
		if err != nil {
			return fmt.Errorf("failed to fetch transfer fees: %w", err)
		}
		fees = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return money.Value{}, TransferFees{}, err
	}
	return balance, fees, nil
}

func (e *accountSendEngine) feeForLevel(sel FeeSelection, fees TransferFees) (money.Value, error) {
	switch sel.SelectedLevel {
	case FeeLevelRegular:
		return fees.Regular, nil
	case FeeLevelPriority:
		return fees.Priority, nil
	case FeeLevelCustom:
		if sel.CustomAmount == nil {
			return money.Value{}, fmt.Errorf("custom fee level selected without custom amount")
		}
		return *sel.CustomAmount, nil
	default:
		return money.Value{}, fmt.Errorf("fee level %s not supported for account send", sel.SelectedLevel)
	}
}

func (e *accountSendEngine) recompute(pt PendingTransaction, amount, balance money.Value, fees TransferFees) (PendingTransaction, error) {
	fee, err := e.feeForLevel(pt.FeeSelection, fees)
	if err != nil {
		return pt, err
	}

	next := pt.WithoutConfirmations()
	next.Amount = amount
	next.FeeAmount = fee
	// A full-balance spend pays the same flat fee.
	next.FeeForFullAvailable = fee
	next.Available = balance.Sub(fee).ClampToZero()
	return next, nil
}

func (e *accountSendEngine) InitializeTransaction(ctx context.Context) (PendingTransaction, error) {
	balance, fees, err := e.fetch(ctx)
	if err != nil {
		return PendingTransaction{}, err
	}

	pt := PendingTransaction{
		Amount: money.Zero(e.source.Currency),
		FeeSelection: FeeSelection{
			SelectedLevel:   FeeLevelRegular,
			AvailableLevels: e.AvailableFeeLevels(),
		},
		SelectedFiat: e.deps.Fiat,
	}
	return e.recompute(pt, pt.Amount, balance, fees)
}

func (e *accountSendEngine) UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error) {
	e.assertCurrency(amount)
	amount = amount.ClampToZero()

	balance, fees, err := e.fetch(ctx)
	if err != nil {
		return pt, err
	}
	next, err := e.recompute(pt, amount, balance, fees)
	if err != nil {
		return pt, err
	}
	if err := checkAboveAvailable(next.Amount, next.Available); err != nil {
		return pt, err
	}
	return next, nil
}

func (e *accountSendEngine) UpdateFeeLevel(ctx context.Context, pt PendingTransaction, level FeeLevel, custom *money.Value) (PendingTransaction, error) {
	if !pt.FeeSelection.Allows(level) {
		return pt, &ValidationError{Code: InvalidFeeLevel, Bound: money.Zero(e.source.Currency)}
	}
	if level == FeeLevelCustom && custom == nil {
		return pt, fmt.Errorf("custom fee level requires a custom amount")
	}

	pt.FeeSelection.SelectedLevel = level
	pt.FeeSelection.CustomAmount = custom

	balance, fees, err := e.fetch(ctx)
	if err != nil {
		return pt, err
	}
	return e.recompute(pt, pt.Amount, balance, fees)
}

func (e *accountSendEngine) ValidateAmount(_ context.Context, pt PendingTransaction) error {
	minSend := money.NewValue(big.NewInt(1), e.source.Currency)
	if !pt.Amount.IsPositive() {
		return &ValidationError{Code: BelowMinimum, Bound: minSend}
	}
	return checkAboveAvailable(pt.Amount, pt.Available)
}

func (e *accountSendEngine) Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error) {
	if err := e.ValidateAmount(ctx, pt); err != nil {
		return TransactionResult{}, err
	}

	txHash, err := e.deps.AccountSubmit.Submit(ctx, e.source.Chain, e.source.Address, e.target.Address, pt.Amount, pt.FeeAmount)
	if err != nil {
		return TransactionResult{}, fmt.Errorf("failed to submit transaction: %w", err)
	}

	e.log.WithField("txHash", txHash).Info("account send submitted")
	return Hashed(txHash, pt.Amount), nil
}
