package quote

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/libhttp"
	"github.com/sailwallet/txengine/internal/money"
)

// Client fetches time-bounded rates from the quoting service.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

type quoteResponse struct {
	ID             string `json:"id"`
	Rate           string `json:"rate"`
	Fee            string `json:"fee"`
	MinAmount      string `json:"min_amount"`
	DepositAddress string `json:"deposit_address"`
	ExpiresAt      int64  `json:"expires_at"`
}

// Quote requests a rate for trading amount of pair.Base into
// pair.Counter. Amounts in the response are minor units of the base
// currency.
func (c *Client) Quote(
	ctx context.Context,
	direction engine.Direction,
	pair engine.Pair,
	amount money.Value,
) (engine.Quote, error) {
	res, err := libhttp.Call[quoteResponse](
		ctx,
		http.MethodGet,
		c.url+"/v1/quote",
		nil,
		nil,
		map[string]string{
			"direction": string(direction),
			"base":      pair.Base.Code,
			"counter":   pair.Counter.Code,
			"amount":    amount.Amount().String(),
		},
	)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("failed to fetch quote: %w", err)
	}

	rate, ok := new(big.Rat).SetString(res.Rate)
	if !ok {
		return engine.Quote{}, fmt.Errorf("failed to parse rate: %s", res.Rate)
	}

	fee, err := parseAmount(res.Fee, pair.Base)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("failed to parse fee: %w", err)
	}
	minAmount, err := parseAmount(res.MinAmount, pair.Base)
	if err != nil {
		return engine.Quote{}, fmt.Errorf("failed to parse min amount: %w", err)
	}

	return engine.Quote{
		ID:             res.ID,
		Rate:           rate,
		Fee:            fee,
		MinAmount:      minAmount,
		DepositAddress: res.DepositAddress,
		ExpiresAt:      time.Unix(res.ExpiresAt, 0),
	}, nil
}

func parseAmount(s string, currency money.Currency) (money.Value, error) {
	if s == "" {
		return money.Zero(currency), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return money.Value{}, fmt.Errorf("invalid amount: %s", s)
	}
	return money.NewValue(n, currency), nil
}
