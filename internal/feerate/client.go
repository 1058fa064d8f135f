package feerate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/libhttp"
	"github.com/sailwallet/txengine/internal/txsize"
)

// Client fetches recommended fee rates from a mempool-stats service.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

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

type recommendedFeesResponse struct {
	FastestFee  uint64 `json:"fastestFee"`
	HalfHourFee uint64 `json:"halfHourFee"`
	HourFee     uint64 `json:"hourFee"`
	MinimumFee  uint64 `json:"minimumFee"`
}

// CurrentFeeRates maps the service's fee tiers onto the engine's
// regular and priority levels. Priority targets next-block inclusion.
func (c *Client) CurrentFeeRates(ctx context.Context, chain asset.Chain) (engine.FeeRates, error) {
	path, err := chainPath(chain)
	if err != nil {
		return engine.FeeRates{}, err
	}

	res, err := libhttp.Call[recommendedFeesResponse](
		ctx,
		http.MethodGet,
		c.url+"/"+path+"/api/v1/fees/recommended",
		nil,
		nil,
		nil,
	)
	if err != nil {
		return engine.FeeRates{}, fmt.Errorf("failed to fetch fee rates: %w", err)
	}

	regular := res.HalfHourFee
	if regular == 0 {
		regular = res.MinimumFee
	}
	priority := res.FastestFee
	if priority < regular {
		priority = regular
	}

	return engine.FeeRates{
		Regular:  txsize.Fee{PerByte: regular},
		Priority: txsize.Fee{PerByte: priority},
	}, nil
}
