package utxo

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/sailwallet/txengine/internal/asset"
)

// Signer signs a fully-constructed unsigned transaction. Input values
// are passed alongside so the signer can compute per-input sighashes.
type Signer interface {
	Sign(ctx context.Context, chain asset.Chain, tx *wire.MsgTx, inputValues []uint64) (*wire.MsgTx, error)
}

// Broadcaster pushes a signed transaction to the network.
type Broadcaster interface {
	SendRawTransaction(ctx context.Context, chain asset.Chain, tx *wire.MsgTx) (*chainhash.Hash, error)
}
