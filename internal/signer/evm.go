package signer

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/libhttp"
)

// EVMClient signs account-based transactions through the remote
// signing service.
type EVMClient struct {
	url string
}

func NewEVMClient(url string) *EVMClient {
	return &EVMClient{url: url}
}

type evmSignRequest struct {
	Chain string `json:"chain"`
	From  string `json:"from"`
	RawTx string `json:"raw_tx"`
}

type evmSignResponse struct {
	SignedTx string `json:"signed_tx"`
}

func (c *EVMClient) Sign(ctx context.Context, chain asset.Chain, tx *types.Transaction, from string) (*types.Transaction, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize tx: %w", err)
	}

	res, err := libhttp.Call[evmSignResponse](
		ctx,
		http.MethodPost,
		c.url+"/v1/sign/evm",
		map[string]string{"Content-Type": "application/json"},
		evmSignRequest{
			Chain: string(chain),
			From:  from,
			RawTx: hex.EncodeToString(raw),
		},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to call signer: %w", err)
	}

	signedRaw, err := hex.DecodeString(res.SignedTx)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signed tx: %w", err)
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(signedRaw); err != nil {
		return nil, fmt.Errorf("failed to deserialize signed tx: %w", err)
	}
	return signed, nil
}
