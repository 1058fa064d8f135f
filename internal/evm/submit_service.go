package evm

import (
	"context"
	"fmt"
	"math/big"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/money"
)

// Signer signs an EVM transaction out of process.
type Signer interface {
	Sign(ctx context.Context, chain asset.Chain, tx *types.Transaction, from string) (*types.Transaction, error)
}

// SubmitService builds, signs and broadcasts native EVM transfers.
type SubmitService struct {
	logger *logrus.Logger
	rpc    *ethclient.Client
	signer Signer
}

func NewSubmitService(logger *logrus.Logger, rpc *ethclient.Client, signer Signer) *SubmitService {
	return &SubmitService{
		logger: logger,
		rpc:    rpc,
		signer: signer,
	}
}

// Submit sends amount from fromAddress to toAddress. The fee value
// caps gas spend: gas price is derived from it at the fixed transfer
// gas limit.
func (s *SubmitService) Submit(
	ctx context.Context,
	chain asset.Chain,
	fromAddress string,
	toAddress string,
	amount money.Value,
	fee money.Value,
) (string, error) {
	from := ecommon.HexToAddress(fromAddress)
	to := ecommon.HexToAddress(toAddress)

	nonce, err := s.rpc.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice := new(big.Int).Div(fee.Amount(), big.NewInt(nativeTransferGas))
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount.Amount(),
		Gas:      nativeTransferGas,
		GasPrice: gasPrice,
	})

	signed, err := s.signer.Sign(ctx, chain, tx, fromAddress)
	if err != nil {
		return "", fmt.Errorf("failed to sign tx: %w", err)
	}

	if er := s.rpc.SendTransaction(ctx, signed); er != nil {
		return "", fmt.Errorf("failed to broadcast tx: %w", er)
	}

	hash := signed.Hash().Hex()
	s.logger.WithFields(logrus.Fields{
		"chain":   chain,
		"tx_hash": hash,
		"nonce":   nonce,
	}).Info("broadcasted evm transaction")

	return hash, nil
}
