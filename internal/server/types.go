package server

import (
	"fmt"
	"math/big"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/txstore"
)

type accountPayload struct {
	Kind     string `json:"kind"`
	Chain    string `json:"chain,omitempty"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
	Label    string `json:"label,omitempty"`
}

type createTransactionRequest struct {
	Action string         `json:"action"`
	Fiat   string         `json:"fiat,omitempty"`
	Source accountPayload `json:"source"`
	Target accountPayload `json:"target"`
}

type updateAmountRequest struct {
	Amount string `json:"amount"`
}

type updateFeeLevelRequest struct {
	Level        string `json:"level"`
	CustomAmount string `json:"custom_amount,omitempty"`
}

type valuePayload struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Decimals int    `json:"decimals"`
}

type confirmationPayload struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type transactionResponse struct {
	ID                  string                `json:"id"`
	State               string                `json:"state"`
	Amount              valuePayload          `json:"amount"`
	Available           valuePayload          `json:"available"`
	FeeAmount           valuePayload          `json:"fee_amount"`
	FeeForFullAvailable valuePayload          `json:"fee_for_full_available"`
	FeeLevel            string                `json:"fee_level"`
	AvailableFeeLevels  []string              `json:"available_fee_levels"`
	Confirmations       []confirmationPayload `json:"confirmations,omitempty"`
	TxHash              string                `json:"tx_hash,omitempty"`
}

type recordResponse struct {
	ID       string `json:"id"`
	Chain    string `json:"chain,omitempty"`
	Action   string `json:"action"`
	TxHash   string `json:"tx_hash,omitempty"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Fee      string `json:"fee"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error string        `json:"error"`
	Code  string        `json:"code,omitempty"`
	Bound *valuePayload `json:"bound,omitempty"`
}

func toValuePayload(v money.Value) valuePayload {
	return valuePayload{
		Amount:   v.Amount().String(),
		Currency: v.Currency().Code,
		Decimals: v.Currency().Decimals,
	}
}

func parseAccount(p accountPayload) (account.Account, error) {
	kind := account.Kind(p.Kind)

	var chain asset.Chain
	if p.Chain != "" {
		c, err := asset.FromString(p.Chain)
		if err != nil {
			return account.Account{}, err
		}
		chain = c
	}

	var currency money.Currency
	switch {
	case p.Currency != "":
		if fiat, err := money.FiatFromCode(p.Currency); err == nil {
			currency = fiat
		} else if chain != "" {
			cur, er := asset.NativeCurrency(chain)
			if er != nil {
				return account.Account{}, er
			}
			if cur.Code != p.Currency {
				return account.Account{}, fmt.Errorf("currency %s does not match chain %s", p.Currency, chain)
			}
			currency = cur
		} else {
			return account.Account{}, fmt.Errorf("unknown currency: %s", p.Currency)
		}
	case chain != "":
		cur, err := asset.NativeCurrency(chain)
		if err != nil {
			return account.Account{}, err
		}
		currency = cur
	default:
		return account.Account{}, fmt.Errorf("account needs a chain or a currency")
	}

	if kind == account.KindOnChain && p.Address == "" {
		return account.Account{}, fmt.Errorf("on-chain account needs an address")
	}

	return account.Account{
		Kind:     kind,
		Chain:    chain,
		Currency: currency,
		Address:  p.Address,
		Label:    p.Label,
	}, nil
}

func parseAmount(s string, currency money.Currency) (money.Value, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return money.Value{}, fmt.Errorf("invalid amount: %s", s)
	}
	return money.NewValue(n, currency), nil
}

func toRecordResponse(rec txstore.Record) recordResponse {
	return recordResponse{
		ID:       rec.ID.String(),
		Chain:    rec.Chain.String(),
		Action:   rec.Action,
		TxHash:   rec.TxHash,
		Amount:   rec.Amount.String(),
		Currency: rec.Currency,
		Fee:      rec.Fee.String(),
		Status:   string(rec.Status),
	}
}

func toTransactionResponse(id string, state engine.State, pt engine.PendingTransaction, txHash string) transactionResponse {
	levels := make([]string, len(pt.FeeSelection.AvailableLevels))
	for i, l := range pt.FeeSelection.AvailableLevels {
		levels[i] = string(l)
	}

	confirmations := make([]confirmationPayload, len(pt.Confirmations))
	for i, c := range pt.Confirmations {
		confirmations[i] = confirmationPayload{Label: c.Label, Value: c.Value}
	}

	return transactionResponse{
		ID:                  id,
		State:               string(state),
		Amount:              toValuePayload(pt.Amount),
		Available:           toValuePayload(pt.Available),
		FeeAmount:           toValuePayload(pt.FeeAmount),
		FeeForFullAvailable: toValuePayload(pt.FeeForFullAvailable),
		FeeLevel:            string(pt.FeeSelection.SelectedLevel),
		AvailableFeeLevels:  levels,
		Confirmations:       confirmations,
		TxHash:              txHash,
	}
}
