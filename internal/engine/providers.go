package engine

import (
	"context"
	"math/big"
	"time"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/txsize"
)

// Direction classifies the flow of funds for quotes, limits and orders.
type Direction string

const (
	DirectionBuy      Direction = "buy"
	DirectionSell     Direction = "sell"
	DirectionDeposit  Direction = "deposit"
	DirectionWithdraw Direction = "withdraw"
	DirectionSwap     Direction = "swap"
)

// Pair is the currency pair a quote is priced for.
type Pair struct {
	Base    money.Currency
	Counter money.Currency
}

// Quote is a time-bounded rate from the quote provider. Engines must
// re-fetch rather than reuse a quote past ExpiresAt.
type Quote struct {
	ID             string
	Rate           *big.Rat
	Fee            money.Value
	MinAmount      money.Value
	DepositAddress string
	ExpiresAt      time.Time
}

// Expired reports whether the quote may no longer be used.
func (q Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}

// FeeRates are the per-byte rates for the standard fee tiers of a
// UTXO chain.
type FeeRates struct {
	Regular  txsize.Fee
	Priority txsize.Fee
}

// TransferFees are the flat native-transfer fees for the standard fee
// tiers of an account-based chain.
type TransferFees struct {
	Regular  money.Value
	Priority money.Value
}

// Limits are the trading bounds supplied by the limits collaborator.
// Daily and annual are the remaining headroom, not the configured caps.
type Limits struct {
	Min             money.Value
	Max             money.Value
	DailyRemaining  money.Value
	AnnualRemaining money.Value
}

// BalanceProvider supplies the spendable balance of an account.
type BalanceProvider interface {
	ActionableBalance(ctx context.Context, acct account.Account) (money.Value, error)
}

// UnspentProvider supplies the UTXO-set snapshot for a non-custodial
// UTXO account. Snapshots are read-only; a fresh one is fetched per
// coin-selection attempt.
type UnspentProvider interface {
	UnspentOutputs(ctx context.Context, acct account.Account) ([]coinselect.UnspentOutput, error)
}

// FeeRateProvider supplies current per-byte fee rates for UTXO chains.
type FeeRateProvider interface {
	CurrentFeeRates(ctx context.Context, chain asset.Chain) (FeeRates, error)
}

// AccountFeeProvider supplies flat transfer fees for account-based
// chains.
type AccountFeeProvider interface {
	TransferFees(ctx context.Context, chain asset.Chain) (TransferFees, error)
}

// QuoteProvider supplies time-bounded rates for trading paths.
type QuoteProvider interface {
	Quote(ctx context.Context, direction Direction, pair Pair, amount money.Value) (Quote, error)
}

// LimitsProvider supplies trading/KYC limits for custodial paths.
type LimitsProvider interface {
	Limits(ctx context.Context, currency money.Currency, direction Direction) (Limits, error)
}

// OrderRequest is a custodial order creation request. IdempotencyKey
// guards against double submission on retry.
type OrderRequest struct {
	Direction          Direction
	QuoteID            string
	Amount             money.Value
	SourceAddress      string
	DestinationAddress string
	IdempotencyKey     string
}

// OrderResult is the backend's terminal answer to order creation.
type OrderResult struct {
	OrderID string
	TxHash  string
}

// OrderSubmission creates custodial orders (buy, sell, withdraw,
// deposit, trading swap legs).
type OrderSubmission interface {
	CreateOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// UTXOSubmitter builds, signs and broadcasts a UTXO transaction from a
// finished coin selection. Signing mechanics live behind this
// interface, outside the engine.
type UTXOSubmitter interface {
	Submit(
		ctx context.Context,
		chain asset.Chain,
		selection coinselect.Result,
		changeAddress string,
		toAddress string,
		amount uint64,
	) (string, error)
}

// AccountSubmitter builds, signs and broadcasts an account-based
// native transfer.
type AccountSubmitter interface {
	Submit(
		ctx context.Context,
		chain asset.Chain,
		fromAddress string,
		toAddress string,
		amount money.Value,
		fee money.Value,
	) (string, error)
}
