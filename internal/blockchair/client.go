package blockchair

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/libhttp"
	"github.com/sailwallet/txengine/internal/money"
)

// Client talks to the Blockchair REST API for all supported UTXO
// chains. It backs the engine's balance and unspent-output lookups and
// carries raw-transaction broadcast for the submitter.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

// chainPath maps a chain to its Blockchair URL segment.
func chainPath(chain asset.Chain) (string, error) {
	switch chain {
	case asset.Bitcoin:
		return "bitcoin", nil
	case asset.BitcoinCash:
		return "bitcoin-cash", nil
	case asset.Litecoin:
		return "litecoin", nil
	case asset.Dogecoin:
		return "dogecoin", nil
	default:
		return "", fmt.Errorf("unsupported chain: %s", chain)
	}
}

type Utxo struct {
	BlockID         int64  `json:"block_id"`
	TransactionHash string `json:"transaction_hash"`
	Index           uint32 `json:"index"`
	Value           uint64 `json:"value"`
}

type addrInfoResponse struct {
	Data map[string]struct {
		Address struct {
			Balance int64 `json:"balance"`
		} `json:"address"`
		Utxo []Utxo `json:"utxo"`
	} `json:"data"`
	Context struct {
		Code  int   `json:"code"`
		State int64 `json:"state"`
	} `json:"context"`
}

// addressInfo fetches the paginated dashboard for an address along
// with the chain tip height from the response context.
func (c *Client) addressInfo(ctx context.Context, chain asset.Chain, address string) ([]Utxo, int64, int64, error) {
	path, err := chainPath(chain)
	if err != nil {
		return nil, 0, 0, err
	}

	var (
		allUtxos []Utxo
		balance  int64
		tip      int64
	)
	offset := 0
	const limit = 50

	for {
		batch, er := libhttp.Call[addrInfoResponse](
			ctx,
			http.MethodGet,
			c.url+"/"+path+"/dashboards/address/"+address,
			nil,
			nil,
			map[string]string{
				"offset": fmt.Sprintf("%d", offset),
				"limit":  fmt.Sprintf("0,%d", limit),
			},
		)
		if er != nil {
			return nil, 0, 0, fmt.Errorf("failed to fetch address info: %w", er)
		}

		tip = batch.Context.State

		val, ok := batch.Data[address]
		if !ok {
			break
		}
		balance = val.Address.Balance

		allUtxos = append(allUtxos, val.Utxo...)
		if len(val.Utxo) < limit {
			break
		}
		offset += limit
	}

	return allUtxos, balance, tip, nil
}

// UnspentOutputs returns the account's UTXO snapshot with
// confirmations derived from the current tip height. Mempool outputs
// report zero confirmations.
func (c *Client) UnspentOutputs(ctx context.Context, acct account.Account) ([]coinselect.UnspentOutput, error) {
	utxos, _, tip, err := c.addressInfo(ctx, acct.Chain, acct.Address)
	if err != nil {
		return nil, err
	}

	out := make([]coinselect.UnspentOutput, len(utxos))
	for i, u := range utxos {
		var confirmations uint32
		if u.BlockID > 0 && tip >= u.BlockID {
			confirmations = uint32(tip - u.BlockID + 1)
		}
		out[i] = coinselect.UnspentOutput{
			TxHash:        u.TransactionHash,
			Index:         u.Index,
			Value:         u.Value,
			Confirmations: confirmations,
		}
	}
	return out, nil
}

// ActionableBalance returns the address balance in the chain's native
// currency.
func (c *Client) ActionableBalance(ctx context.Context, acct account.Account) (money.Value, error) {
	_, balance, _, err := c.addressInfo(ctx, acct.Chain, acct.Address)
	if err != nil {
		return money.Value{}, err
	}
	return money.NewValue(big.NewInt(balance), acct.Currency), nil
}

type pushResponse struct {
	Data struct {
		TransactionHash string `json:"transaction_hash"`
	} `json:"data"`
}

// SendRawTransaction broadcasts a serialized transaction and returns
// its hash.
func (c *Client) SendRawTransaction(ctx context.Context, chain asset.Chain, tx *wire.MsgTx) (*chainhash.Hash, error) {
	path, err := chainPath(chain)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	if er := tx.Serialize(&b); er != nil {
		return nil, fmt.Errorf("failed to serialize tx: %w", er)
	}

	res, err := libhttp.Call[pushResponse](
		ctx,
		http.MethodPost,
		c.url+"/"+path+"/push/transaction",
		map[string]string{"Content-Type": "application/json"},
		map[string]string{"data": hex.EncodeToString(b.Bytes())},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to push tx: %w", err)
	}

	hash, err := chainhash.NewHashFromStr(res.Data.TransactionHash)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tx hash: %w", err)
	}
	return hash, nil
}

type txInfoResponse struct {
	Data map[string]struct {
		Transaction struct {
			BlockID int64 `json:"block_id"`
		} `json:"transaction"`
	} `json:"data"`
	Context struct {
		State int64 `json:"state"`
	} `json:"context"`
}

// TxConfirmations reports how many blocks confirm a transaction; zero
// means it is still in the mempool.
func (c *Client) TxConfirmations(ctx context.Context, chain asset.Chain, txHash string) (uint32, error) {
	path, err := chainPath(chain)
	if err != nil {
		return 0, err
	}

	res, err := libhttp.Call[txInfoResponse](
		ctx,
		http.MethodGet,
		c.url+"/"+path+"/dashboards/transaction/"+txHash,
		nil,
		nil,
		nil,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch tx info: %w", err)
	}

	data, ok := res.Data[txHash]
	if !ok {
		return 0, fmt.Errorf("transaction %s not found", txHash)
	}
	if data.Transaction.BlockID <= 0 || res.Context.State < data.Transaction.BlockID {
		return 0, nil
	}
	return uint32(res.Context.State - data.Transaction.BlockID + 1), nil
}
