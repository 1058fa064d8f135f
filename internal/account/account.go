package account

import (
	"fmt"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/money"
)

// Kind distinguishes the account models a transaction can move value
// between.
type Kind string

const (
	// KindOnChain is a non-custodial on-chain account or external address.
	KindOnChain Kind = "on_chain"
	// KindTrading is a custodial trading account.
	KindTrading Kind = "trading"
	// KindInterest is a custodial interest-bearing account.
	KindInterest Kind = "interest"
	// KindExchange is a linked exchange account.
	KindExchange Kind = "exchange"
	// KindBank is a linked bank account (fiat only).
	KindBank Kind = "bank"
)

// Account is a funds source or destination for one transaction flow.
// The host owns account lifecycle; engines hold accounts by value for
// the duration of a single flow.
type Account struct {
	Kind     Kind
	Chain    asset.Chain
	Currency money.Currency
	Address  string
	Label    string
}

// IsCustodial reports whether funds move via a custodial backend
// rather than an on-chain transaction built by this engine.
func (a Account) IsCustodial() bool {
	switch a.Kind {
	case KindTrading, KindInterest, KindExchange, KindBank:
		return true
	default:
		return false
	}
}

// NewOnChain returns an on-chain account for a chain's native asset.
func NewOnChain(chain asset.Chain, address string) (Account, error) {
	cur, err := asset.NativeCurrency(chain)
	if err != nil {
		return Account{}, fmt.Errorf("failed to resolve native currency: %w", err)
	}
	return Account{Kind: KindOnChain, Chain: chain, Currency: cur, Address: address}, nil
}

// NewTrading returns a custodial trading account for a currency.
func NewTrading(chain asset.Chain, currency money.Currency) Account {
	return Account{Kind: KindTrading, Chain: chain, Currency: currency}
}

// NewBank returns a linked bank account in a fiat currency.
func NewBank(currency money.Currency, label string) Account {
	return Account{Kind: KindBank, Currency: currency, Label: label}
}
