package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/txsize"
)

// Action is the user intent a flow was started for.
type Action string

const (
	ActionSend     Action = "send"
	ActionSwap     Action = "swap"
	ActionBuy      Action = "buy"
	ActionSell     Action = "sell"
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
)

// Engine drives one (source, target, action) transaction flow.
// Implementations are stateless between calls: all per-flow state
// travels in the PendingTransaction, and each operation returns a new
// value rather than mutating its input.
type Engine interface {
	InitializeTransaction(ctx context.Context) (PendingTransaction, error)
	UpdateAmount(ctx context.Context, pt PendingTransaction, amount money.Value) (PendingTransaction, error)
	UpdateFeeLevel(ctx context.Context, pt PendingTransaction, level FeeLevel, custom *money.Value) (PendingTransaction, error)
	ValidateAmount(ctx context.Context, pt PendingTransaction) error
	Execute(ctx context.Context, pt PendingTransaction) (TransactionResult, error)

	// AssertInputsValid panics when the engine was wired with
	// mismatched source/target inputs. The host must call it before
	// Execute; failures are programming errors, not user input.
	AssertInputsValid()

	AvailableFeeLevels() []FeeLevel
}

// Dependencies are the collaborator implementations an engine variant
// may draw on. Variants use the subset they need; New validates that
// the required ones are present.
type Dependencies struct {
	Logger *logrus.Logger

	Balances    BalanceProvider
	Unspents    UnspentProvider
	FeeRates    FeeRateProvider
	AccountFees AccountFeeProvider
	Quotes      QuoteProvider
	Limits      LimitsProvider
	Orders      OrderSubmission

	UTXOSubmit    UTXOSubmitter
	AccountSubmit AccountSubmitter

	Selector     *coinselect.Selector
	SelectPolicy coinselect.Policy
	Estimator    *txsize.Estimator

	Fiat money.Currency
}

// New selects the engine variant for a (source kind, target kind,
// action) tuple. The variant set is closed: dispatch happens once per
// flow and unknown combinations are an error, not a fallback.
func New(source, target account.Account, action Action, deps Dependencies) (Engine, error) {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}

	switch action {
	case ActionSend:
		if source.Kind != account.KindOnChain || target.Kind != account.KindOnChain {
			return nil, fmt.Errorf("send requires on-chain source and target, got %s -> %s", source.Kind, target.Kind)
		}
		if source.Chain.IsUTXO() {
			return newUTXOSendEngine(source, target, deps)
		}
		if source.Chain.IsEvm() {
			return newAccountSendEngine(source, target, deps)
		}
		return nil, fmt.Errorf("unsupported send chain: %s", source.Chain)

	case ActionSwap:
		switch {
		case source.Kind == account.KindTrading && target.Kind == account.KindTrading:
			return newTradingSwapEngine(source, target, deps)
		case source.Kind == account.KindOnChain && source.Chain.IsUTXO() && target.Kind == account.KindTrading:
			return newOnChainSwapEngine(source, target, deps)
		default:
			return nil, fmt.Errorf("unsupported swap pair: %s -> %s", source.Kind, target.Kind)
		}

	case ActionBuy:
		if (source.Kind == account.KindBank || source.Kind == account.KindTrading) &&
			source.Currency.Fiat && target.Kind == account.KindTrading {
			return newOrderEngine(source, target, DirectionBuy, deps)
		}
		return nil, fmt.Errorf("unsupported buy pair: %s -> %s", source.Kind, target.Kind)

	case ActionSell:
		if source.Kind == account.KindTrading && !source.Currency.Fiat &&
			(target.Kind == account.KindBank || (target.Kind == account.KindTrading && target.Currency.Fiat)) {
			return newOrderEngine(source, target, DirectionSell, deps)
		}
		return nil, fmt.Errorf("unsupported sell pair: %s -> %s", source.Kind, target.Kind)

	case ActionDeposit:
		switch {
		case source.Kind == account.KindBank && target.Kind == account.KindTrading:
			return newOrderEngine(source, target, DirectionDeposit, deps)
		case source.Kind == account.KindTrading && target.Kind == account.KindInterest:
			return newOrderEngine(source, target, DirectionDeposit, deps)
		default:
			return nil, fmt.Errorf("unsupported deposit pair: %s -> %s", source.Kind, target.Kind)
		}

	case ActionWithdraw:
		if (source.Kind == account.KindTrading || source.Kind == account.KindInterest) &&
			target.Kind == account.KindBank {
			return newOrderEngine(source, target, DirectionWithdraw, deps)
		}
		return nil, fmt.Errorf("unsupported withdraw pair: %s -> %s", source.Kind, target.Kind)

	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

// base carries the inputs and helpers shared by every variant.
type base struct {
	source account.Account
	target account.Account
	deps   Dependencies
	log    *logrus.Entry
}

func newBase(source, target account.Account, variant string, deps Dependencies) base {
	return base{
		source: source,
		target: target,
		deps:   deps,
		log: deps.Logger.WithFields(logrus.Fields{
			"pkg":    "engine",
			"engine": variant,
		}),
	}
}

// assertCurrency panics when a value is denominated in anything but
// the source asset. Amounts in the wrong currency are a wiring bug.
func (b *base) assertCurrency(v money.Value) {
	if !v.Currency().Equal(b.source.Currency) {
		panic(fmt.Sprintf("amount currency %s does not match source asset %s",
			v.Currency().Code, b.source.Currency.Code))
	}
}

// checkAboveAvailable returns the validation error for amounts above
// the spendable balance. Never clamps silently.
func checkAboveAvailable(amount, available money.Value) error {
	if amount.Cmp(available) > 0 {
		return &ValidationError{Code: AboveMaximum, Bound: available}
	}
	return nil
}

// validateLimits checks custodial trading limits when a provider is
// wired. The smallest violated bound travels back with the error.
func (b *base) validateLimits(ctx context.Context, amount money.Value, direction Direction) error {
	if b.deps.Limits == nil {
		return nil
	}

	limits, err := b.deps.Limits.Limits(ctx, b.source.Currency, direction)
	if err != nil {
		return fmt.Errorf("failed to fetch limits: %w", err)
	}

	if !limits.Min.IsZero() && amount.Cmp(limits.Min) < 0 {
		return &ValidationError{Code: BelowMinimum, Bound: limits.Min}
	}
	if !limits.Max.IsZero() && amount.Cmp(limits.Max) > 0 {
		return &ValidationError{Code: AboveMaximum, Bound: limits.Max}
	}
	if !limits.DailyRemaining.IsZero() && amount.Cmp(limits.DailyRemaining) > 0 {
		return &ValidationError{Code: LimitsExceeded, Bound: limits.DailyRemaining}
	}
	if !limits.AnnualRemaining.IsZero() && amount.Cmp(limits.AnnualRemaining) > 0 {
		return &ValidationError{Code: LimitsExceeded, Bound: limits.AnnualRemaining}
	}
	return nil
}
