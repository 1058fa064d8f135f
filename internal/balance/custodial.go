package balance

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/libhttp"
	"github.com/sailwallet/txengine/internal/money"
)

// CustodialClient reads account balances from the exchange backend.
type CustodialClient struct {
	url string
}

func NewCustodialClient(url string) *CustodialClient {
	return &CustodialClient{url: url}
}

type balanceResponse struct {
	Amount string `json:"amount"`
}

func (c *CustodialClient) ActionableBalance(ctx context.Context, acct account.Account) (money.Value, error) {
	res, err := libhttp.Call[balanceResponse](
		ctx,
		http.MethodGet,
		c.url+"/v1/balances",
		nil,
		nil,
		map[string]string{
			"currency": acct.Currency.Code,
			"kind":     string(acct.Kind),
		},
	)
	if err != nil {
		return money.Value{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	n, ok := new(big.Int).SetString(res.Amount, 10)
	if !ok {
		return money.Value{}, fmt.Errorf("invalid balance amount: %s", res.Amount)
	}
	return money.NewValue(n, acct.Currency), nil
}
