package utxo

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/coinselect"
)

// SubmitService assembles a wire transaction from a finished coin
// selection, hands it to the signer and broadcasts the result.
type SubmitService struct {
	logger      *logrus.Logger
	send        *SendService
	signer      Signer
	broadcaster Broadcaster
}

func NewSubmitService(
	logger *logrus.Logger,
	send *SendService,
	signer Signer,
	broadcaster Broadcaster,
) *SubmitService {
	return &SubmitService{
		logger:      logger,
		send:        send,
		signer:      signer,
		broadcaster: broadcaster,
	}
}

// Submit builds, signs and broadcasts a transfer spending exactly the
// selected outputs. The selection's change amount goes back to
// changeAddress when non-zero.
func (s *SubmitService) Submit(
	ctx context.Context,
	chain asset.Chain,
	selection coinselect.Result,
	changeAddress string,
	toAddress string,
	amount uint64,
) (string, error) {
	outputs, _, err := s.send.BuildTransfer(chain, toAddress, changeAddress, amount, selection.Change)
	if err != nil {
		return "", fmt.Errorf("failed to build outputs: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	inputValues := make([]uint64, len(selection.Outputs))
	for i, utxo := range selection.Outputs {
		hash, er := chainhash.NewHashFromStr(utxo.TxHash)
		if er != nil {
			return "", fmt.Errorf("failed to parse input hash %s: %w", utxo.TxHash, er)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, utxo.Index), nil, nil))
		inputValues[i] = utxo.Value
	}
	for _, out := range outputs {
		tx.AddTxOut(out)
	}

	signed, err := s.signer.Sign(ctx, chain, tx, inputValues)
	if err != nil {
		return "", fmt.Errorf("failed to sign tx: %w", err)
	}

	hash, err := s.broadcaster.SendRawTransaction(ctx, chain, signed)
	if err != nil {
		return "", fmt.Errorf("failed to broadcast tx: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"chain":   chain,
		"tx_hash": hash.String(),
		"inputs":  len(selection.Outputs),
		"fee":     selection.AbsoluteFee,
	}).Info("broadcasted utxo transaction")

	return hash.String(), nil
}
