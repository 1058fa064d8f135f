package balance

import (
	"context"
	"fmt"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/money"
)

// Router dispatches balance lookups to the provider that owns the
// account's model: UTXO chains, EVM chains or the custodial backend.
type Router struct {
	utxo      engine.BalanceProvider
	evm       engine.BalanceProvider
	custodial engine.BalanceProvider
}

func NewRouter(utxo, evm, custodial engine.BalanceProvider) *Router {
	return &Router{utxo: utxo, evm: evm, custodial: custodial}
}

func (r *Router) ActionableBalance(ctx context.Context, acct account.Account) (money.Value, error) {
	switch {
	case acct.IsCustodial():
		if r.custodial == nil {
			return money.Value{}, fmt.Errorf("no custodial balance provider")
		}
		return r.custodial.ActionableBalance(ctx, acct)
	case acct.Chain.IsUTXO():
		if r.utxo == nil {
			return money.Value{}, fmt.Errorf("no utxo balance provider")
		}
		return r.utxo.ActionableBalance(ctx, acct)
	case acct.Chain.IsEvm():
		if r.evm == nil {
			return money.Value{}, fmt.Errorf("no evm balance provider")
		}
		return r.evm.ActionableBalance(ctx, acct)
	default:
		return money.Value{}, fmt.Errorf("no balance provider for account kind %s chain %s", acct.Kind, acct.Chain)
	}
}
