package evm

import (
	"context"
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/money"
)

// BalanceService reads native balances over JSON-RPC.
type BalanceService struct {
	rpc *ethclient.Client
}

func NewBalanceService(rpc *ethclient.Client) *BalanceService {
	return &BalanceService{rpc: rpc}
}

func (s *BalanceService) ActionableBalance(ctx context.Context, acct account.Account) (money.Value, error) {
	balance, err := s.rpc.BalanceAt(ctx, ecommon.HexToAddress(acct.Address), nil)
	if err != nil {
		return money.Value{}, fmt.Errorf("failed to get native balance: %w", err)
	}
	return money.NewValue(balance, acct.Currency), nil
}
