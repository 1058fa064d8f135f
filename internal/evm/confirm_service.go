package evm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sailwallet/txengine/internal/asset"
)

// ConfirmService reads transaction confirmation depth over JSON-RPC.
type ConfirmService struct {
	rpc *ethclient.Client
}

func NewConfirmService(rpc *ethclient.Client) *ConfirmService {
	return &ConfirmService{rpc: rpc}
}

// TxConfirmations returns how many blocks deep the transaction is, or
// zero while it is still pending.
func (s *ConfirmService) TxConfirmations(ctx context.Context, _ asset.Chain, txHash string) (uint32, error) {
	receipt, err := s.rpc.TransactionReceipt(ctx, ecommon.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get receipt: %w", err)
	}

	tip, err := s.rpc.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}

	mined := receipt.BlockNumber.Uint64()
	if tip < mined {
		return 0, nil
	}
	return uint32(tip - mined + 1), nil
}
