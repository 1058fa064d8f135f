package limits

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/libhttp"
	"github.com/sailwallet/txengine/internal/money"
)

// Client fetches trading limits from the compliance service.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

type limitsResponse struct {
	Min             string `json:"min"`
	Max             string `json:"max"`
	DailyRemaining  string `json:"daily_remaining"`
	AnnualRemaining string `json:"annual_remaining"`
}

// Limits returns the bounds for trading currency in the given
// direction. All amounts are in the currency's minor units.
func (c *Client) Limits(
	ctx context.Context,
	currency money.Currency,
	direction engine.Direction,
) (engine.Limits, error) {
	res, err := libhttp.Call[limitsResponse](
		ctx,
		http.MethodGet,
		c.url+"/v1/limits",
		nil,
		nil,
		map[string]string{
			"currency":  currency.Code,
			"direction": string(direction),
		},
	)
	if err != nil {
		return engine.Limits{}, fmt.Errorf("failed to fetch limits: %w", err)
	}

	out := engine.Limits{}
	for _, f := range []struct {
		raw  string
		dest *money.Value
	}{
		{res.Min, &out.Min},
		{res.Max, &out.Max},
		{res.DailyRemaining, &out.DailyRemaining},
		{res.AnnualRemaining, &out.AnnualRemaining},
	} {
		if f.raw == "" {
			*f.dest = money.Zero(currency)
			continue
		}
		n, ok := new(big.Int).SetString(f.raw, 10)
		if !ok {
			return engine.Limits{}, fmt.Errorf("invalid limit amount: %s", f.raw)
		}
		*f.dest = money.NewValue(n, currency)
	}
	return out, nil
}
