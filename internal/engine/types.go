package engine

import (
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/money"
)

// FeeLevel is a user-facing fee tier.
type FeeLevel string

const (
	FeeLevelRegular  FeeLevel = "regular"
	FeeLevelPriority FeeLevel = "priority"
	FeeLevelCustom   FeeLevel = "custom"
	FeeLevelNone     FeeLevel = "none"
)

// FeeSelection holds the fee tier chosen for a pending transaction and
// the tiers the engine variant supports. SelectedLevel is always a
// member of AvailableLevels.
type FeeSelection struct {
	SelectedLevel   FeeLevel
	AvailableLevels []FeeLevel
	CustomAmount    *money.Value
}

// Allows reports whether level is one of the available levels.
func (s FeeSelection) Allows(level FeeLevel) bool {
	for _, l := range s.AvailableLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Confirmation is one line of the pre-execution summary shown to the
// user. Confirmations are derived from the amount and fee and are
// cleared whenever either changes.
type Confirmation struct {
	Label string
	Value string
}

// Metadata carries engine-variant state threaded through the pending
// transaction: the last coin selection for UTXO variants, the live
// quote for trading variants.
type Metadata struct {
	Selection *coinselect.Result
	Quote     *Quote
}

// PendingTransaction is the value threaded through one transaction
// flow. Engines never mutate it in place; every operation returns a
// new value and the host replaces the old one.
type PendingTransaction struct {
	Amount              money.Value
	Available           money.Value
	FeeAmount           money.Value
	FeeForFullAvailable money.Value
	FeeSelection        FeeSelection
	SelectedFiat        money.Currency
	Confirmations       []Confirmation
	Meta                Metadata
}

// WithoutConfirmations returns a copy with the confirmation summary
// cleared. Called on every amount or fee change since the summary
// depends on both.
func (pt PendingTransaction) WithoutConfirmations() PendingTransaction {
	pt.Confirmations = nil
	return pt
}

// TransactionResult is the terminal state of Execute. On-chain
// submissions carry the transaction hash; custodial order paths may
// complete without one.
type TransactionResult struct {
	TxHash string
	Amount money.Value
}

// Hashed returns a result for an on-chain submission.
func Hashed(txHash string, amount money.Value) TransactionResult {
	return TransactionResult{TxHash: txHash, Amount: amount}
}

// UnHashed returns a result for a custodial submission without an
// on-chain hash.
func UnHashed(amount money.Value) TransactionResult {
	return TransactionResult{Amount: amount}
}

func (r TransactionResult) IsHashed() bool { return r.TxHash != "" }
