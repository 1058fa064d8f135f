package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/asset"
)

func TestUTXOClientSign(t *testing.T) {
	unsigned := wire.NewMsgTx(wire.TxVersion)
	hash, err := chainhash.NewHashFromStr("4444444444444444444444444444444444444444444444444444444444444444")
	require.NoError(t, err)
	unsigned.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 0), nil, nil))
	unsigned.AddTxOut(wire.NewTxOut(10_000, []byte{0x51}))

	// The stub "signs" by injecting a signature script.
	signed := unsigned.Copy()
	signed.TxIn[0].SignatureScript = []byte{0x01, 0x02, 0x03}
	var signedBuf bytes.Buffer
	require.NoError(t, signed.Serialize(&signedBuf))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sign/utxo", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bitcoin", req["chain"])
		assert.NotEmpty(t, req["raw_tx"])
		assert.Len(t, req["input_values"], 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signed_tx": "` + hex.EncodeToString(signedBuf.Bytes()) + `"}`))
	}))
	defer srv.Close()

	c := NewUTXOClient(srv.URL)
	got, err := c.Sign(context.Background(), asset.Bitcoin, unsigned, []uint64{100_000})
	require.NoError(t, err)

	require.Len(t, got.TxIn, 1)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got.TxIn[0].SignatureScript)
	require.Len(t, got.TxOut, 1)
	assert.Equal(t, int64(10_000), got.TxOut[0].Value)
}

func TestUTXOClientSignUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewUTXOClient(srv.URL)
	_, err := c.Sign(context.Background(), asset.Bitcoin, wire.NewMsgTx(wire.TxVersion), nil)
	assert.Error(t, err)
}

func TestUTXOClientSignBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signed_tx": "zz-not-hex"}`))
	}))
	defer srv.Close()

	c := NewUTXOClient(srv.URL)
	_, err := c.Sign(context.Background(), asset.Bitcoin, wire.NewMsgTx(wire.TxVersion), nil)
	assert.Error(t, err)
}
