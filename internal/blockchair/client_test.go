package blockchair

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
)

func btcTestAccount(address string) account.Account {
	return account.Account{
		Kind:     account.KindOnChain,
		Chain:    asset.Bitcoin,
		Currency: asset.MustNativeCurrency(asset.Bitcoin),
		Address:  address,
	}
}

func TestUnspentOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bitcoin/dashboards/address/addr1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"addr1": {
					"address": {"balance": 150000},
					"utxo": [
						{"block_id": 800000, "transaction_hash": "aa", "index": 0, "value": 100000},
						{"block_id": 800004, "transaction_hash": "bb", "index": 1, "value": 40000},
						{"block_id": -1, "transaction_hash": "cc", "index": 0, "value": 10000}
					]
				}
			},
			"context": {"code": 200, "state": 800004}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	utxos, err := c.UnspentOutputs(context.Background(), btcTestAccount("addr1"))
	require.NoError(t, err)

	require.Len(t, utxos, 3)
	assert.Equal(t, "aa", utxos[0].TxHash)
	assert.Equal(t, uint32(5), utxos[0].Confirmations)
	assert.Equal(t, uint32(1), utxos[1].Confirmations)
	// Mempool outputs carry a negative block id.
	assert.Equal(t, uint32(0), utxos[2].Confirmations)
	assert.Equal(t, uint64(40_000), utxos[1].Value)
	assert.Equal(t, uint32(1), utxos[1].Index)
}

func TestUnspentOutputsPaginates(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		pages++

		utxos := make([]Utxo, 0, 50)
		if offset == "0" {
			for i := 0; i < 50; i++ {
				utxos = append(utxos, Utxo{BlockID: 800000, TransactionHash: fmt.Sprintf("tx%d", i), Index: 0, Value: 1000})
			}
		} else {
			utxos = append(utxos, Utxo{BlockID: 800000, TransactionHash: "last", Index: 0, Value: 1000})
		}

		resp := map[string]any{
			"data": map[string]any{
				"addr1": map[string]any{
					"address": map[string]any{"balance": 51000},
					"utxo":    utxos,
				},
			},
			"context": map[string]any{"code": 200, "state": 800010},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	utxos, err := c.UnspentOutputs(context.Background(), btcTestAccount("addr1"))
	require.NoError(t, err)

	assert.Equal(t, 2, pages)
	assert.Len(t, utxos, 51)
	assert.Equal(t, "last", utxos[50].TxHash)
}

func TestActionableBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {"addr1": {"address": {"balance": 150000}, "utxo": []}},
			"context": {"code": 200, "state": 800004}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	balance, err := c.ActionableBalance(context.Background(), btcTestAccount("addr1"))
	require.NoError(t, err)

	assert.Equal(t, "150000", balance.Amount().String())
	assert.Equal(t, "BTC", balance.Currency().Code)
}

func TestSendRawTransaction(t *testing.T) {
	const responseHash = "1111111111111111111111111111111111111111111111111111111111111111"

	var pushed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bitcoin/push/transaction", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		pushed = body["data"]

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"transaction_hash": "` + responseHash + `"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tx := wire.NewMsgTx(wire.TxVersion)
	hash, err := c.SendRawTransaction(context.Background(), asset.Bitcoin, tx)
	require.NoError(t, err)

	assert.Equal(t, responseHash, hash.String())
	assert.NotEmpty(t, pushed)
}

func TestTxConfirmations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bitcoin/dashboards/transaction/deadbeef", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {"deadbeef": {"transaction": {"block_id": 800000}}},
			"context": {"state": 800002}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	confirmations, err := c.TxConfirmations(context.Background(), asset.Bitcoin, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), confirmations)
}

func TestTxConfirmationsMempool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {"deadbeef": {"transaction": {"block_id": -1}}},
			"context": {"state": 800002}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	confirmations, err := c.TxConfirmations(context.Background(), asset.Bitcoin, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), confirmations)
}

func TestTxConfirmationsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {}, "context": {"state": 800002}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.TxConfirmations(context.Background(), asset.Bitcoin, "deadbeef")
	assert.Error(t, err)
}

func TestUnsupportedChain(t *testing.T) {
	c := NewClient("http://localhost")
	_, err := c.UnspentOutputs(context.Background(), account.Account{Chain: asset.Ethereum})
	assert.Error(t, err)
}
