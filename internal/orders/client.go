package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/libhttp"
)

// Client creates custodial orders against the exchange backend.
type Client struct {
	logger *logrus.Logger
	url    string
}

func NewClient(logger *logrus.Logger, url string) *Client {
	return &Client{logger: logger, url: url}
}

type createOrderRequest struct {
	Direction          string `json:"direction"`
	QuoteID            string `json:"quote_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	SourceAddress      string `json:"source_address,omitempty"`
	DestinationAddress string `json:"destination_address,omitempty"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
	TxHash  string `json:"tx_hash"`
}

// CreateOrder submits the order exactly once per idempotency key; the
// backend replays the original response on retries.
func (c *Client) CreateOrder(ctx context.Context, req engine.OrderRequest) (engine.OrderResult, error) {
	res, err := libhttp.Call[createOrderResponse](
		ctx,
		http.MethodPost,
		c.url+"/v1/orders",
		map[string]string{
			"Content-Type":    "application/json",
			"Idempotency-Key": req.IdempotencyKey,
		},
		createOrderRequest{
			Direction:          string(req.Direction),
			QuoteID:            req.QuoteID,
			Amount:             req.Amount.Amount().String(),
			Currency:           req.Amount.Currency().Code,
			SourceAddress:      req.SourceAddress,
			DestinationAddress: req.DestinationAddress,
		},
		nil,
	)
	if err != nil {
		return engine.OrderResult{}, fmt.Errorf("failed to create order: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"order_id":  res.OrderID,
		"direction": req.Direction,
		"quote_id":  req.QuoteID,
	}).Info("created order")

	return engine.OrderResult{
		OrderID: res.OrderID,
		TxHash:  res.TxHash,
	}, nil
}
