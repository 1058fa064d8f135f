package signer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/asset"
)

func TestEVMClientSign(t *testing.T) {
	to := ecommon.HexToAddress("0x0000000000000000000000000000000000000001")
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    7,
		To:       &to,
		Value:    big.NewInt(500_000),
		Gas:      21_000,
		GasPrice: big.NewInt(1000),
	})

	// The stub echoes the transaction back; round-tripping through the
	// wire encoding is what matters here.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sign/evm", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ethereum", req["chain"])
		assert.Equal(t, "0xfrom", req["from"])

		raw, err := hex.DecodeString(req["raw_tx"])
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signed_tx": "` + hex.EncodeToString(raw) + `"}`))
	}))
	defer srv.Close()

	c := NewEVMClient(srv.URL)
	got, err := c.Sign(context.Background(), asset.Ethereum, unsigned, "0xfrom")
	require.NoError(t, err)

	assert.Equal(t, uint64(7), got.Nonce())
	assert.Equal(t, to, *got.To())
	assert.Equal(t, "500000", got.Value().String())
}

func TestEVMClientSignUpstreamError(t *testing.T) {
	to := ecommon.HexToAddress("0x0000000000000000000000000000000000000001")
	tx := types.NewTx(&types.LegacyTx{To: &to, Value: big.NewInt(1), Gas: 21_000, GasPrice: big.NewInt(1)})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewEVMClient(srv.URL)
	_, err := c.Sign(context.Background(), asset.Ethereum, tx, "0xfrom")
	assert.Error(t, err)
}
