package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/money"
)

const nativeTransferGas = 21000

// FeeService quotes flat native-transfer fees from current gas prices.
type FeeService struct {
	rpc *ethclient.Client
}

func NewFeeService(rpc *ethclient.Client) *FeeService {
	return &FeeService{rpc: rpc}
}

// TransferFees computes the cost of a plain native transfer. The
// priority tier adds the suggested tip on top of the base gas price.
func (s *FeeService) TransferFees(ctx context.Context, chain asset.Chain) (engine.TransferFees, error) {
	currency, err := asset.NativeCurrency(chain)
	if err != nil {
		return engine.TransferFees{}, err
	}

	gasPrice, err := s.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return engine.TransferFees{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tip, err := s.rpc.SuggestGasTipCap(ctx)
	if err != nil {
		return engine.TransferFees{}, fmt.Errorf("failed to suggest gas tip cap: %w", err)
	}

	gas := big.NewInt(nativeTransferGas)
	regular := new(big.Int).Mul(gasPrice, gas)
	priority := new(big.Int).Mul(new(big.Int).Add(gasPrice, tip), gas)

	return engine.TransferFees{
		Regular:  money.NewValue(regular, currency),
		Priority: money.NewValue(priority, currency),
	}, nil
}
