package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/btcsuite/btcd/wire"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/libhttp"
)

// UTXOClient signs UTXO transactions through the remote signing
// service. Keys never enter this process.
type UTXOClient struct {
	url string
}

func NewUTXOClient(url string) *UTXOClient {
	return &UTXOClient{url: url}
}

type signRequest struct {
	Chain       string   `json:"chain"`
	RawTx       string   `json:"raw_tx"`
	InputValues []uint64 `json:"input_values"`
}

type signResponse struct {
	SignedTx string `json:"signed_tx"`
}

// Sign submits an unsigned transaction and returns the fully signed
// transaction deserialized from the service's response.
func (c *UTXOClient) Sign(ctx context.Context, chain asset.Chain, tx *wire.MsgTx, inputValues []uint64) (*wire.MsgTx, error) {
	var b bytes.Buffer
	if err := tx.Serialize(&b); err != nil {
		return nil, fmt.Errorf("failed to serialize tx: %w", err)
	}

	res, err := libhttp.Call[signResponse](
		ctx,
		http.MethodPost,
		c.url+"/v1/sign/utxo",
		map[string]string{"Content-Type": "application/json"},
		signRequest{
			Chain:       string(chain),
			RawTx:       hex.EncodeToString(b.Bytes()),
			InputValues: inputValues,
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call signer: %w", err)
	}

	raw, err := hex.DecodeString(res.SignedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signed tx: %w", err)
	}

	signed := wire.NewMsgTx(wire.TxVersion)
	if err := signed.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to deserialize signed tx: %w", err)
	}
	return signed, nil
}
