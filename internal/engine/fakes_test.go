package engine

import (
	"context"
	"sync"

	"github.com/sailwallet/txengine/internal/account"
	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/money"
)

type fakeBalances struct {
	balance money.Value
	err     error
}

func (f *fakeBalances) ActionableBalance(_ context.Context, _ account.Account) (money.Value, error) {
	return f.balance, f.err
}

type fakeUnspents struct {
	utxos []coinselect.UnspentOutput
	err   error
}

func (f *fakeUnspents) UnspentOutputs(_ context.Context, _ account.Account) ([]coinselect.UnspentOutput, error) {
	return f.utxos, f.err
}

type fakeFeeRates struct {
	rates FeeRates
	err   error
}

func (f *fakeFeeRates) CurrentFeeRates(_ context.Context, _ asset.Chain) (FeeRates, error) {
	return f.rates, f.err
}

type fakeAccountFees struct {
	fees TransferFees
	err  error
}

func (f *fakeAccountFees) TransferFees(_ context.Context, _ asset.Chain) (TransferFees, error) {
	return f.fees, f.err
}

type fakeQuotes struct {
	mu    sync.Mutex
	quote Quote
	err   error
	calls []money.Value
}

func (f *fakeQuotes) Quote(_ context.Context, _ Direction, _ Pair, amount money.Value) (Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, amount)
	return f.quote, f.err
}

type fakeLimits struct {
	limits Limits
	err    error
}

func (f *fakeLimits) Limits(_ context.Context, _ money.Currency, _ Direction) (Limits, error) {
	return f.limits, f.err
}

type fakeOrders struct {
	mu       sync.Mutex
	result   OrderResult
	err      error
	requests []OrderRequest
}

func (f *fakeOrders) CreateOrder(_ context.Context, req OrderRequest) (OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

type utxoSubmitCall struct {
	chain         asset.Chain
	selection     coinselect.Result
	changeAddress string
	toAddress     string
	amount        uint64
}

type fakeUTXOSubmitter struct {
	mu     sync.Mutex
	txHash string
	err    error
	calls  []utxoSubmitCall
}

func (f *fakeUTXOSubmitter) Submit(
	_ context.Context,
	chain asset.Chain,
	selection coinselect.Result,
	changeAddress string,
	toAddress string,
	amount uint64,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, utxoSubmitCall{
		chain:         chain,
		selection:     selection,
		changeAddress: changeAddress,
		toAddress:     toAddress,
		amount:        amount,
	})
	return f.txHash, f.err
}

type accountSubmitCall struct {
	chain       asset.Chain
	fromAddress string
	toAddress   string
	amount      money.Value
	fee         money.Value
}

type fakeAccountSubmitter struct {
	mu     sync.Mutex
	txHash string
	err    error
	calls  []accountSubmitCall
}

func (f *fakeAccountSubmitter) Submit(
	_ context.Context,
	chain asset.Chain,
	fromAddress string,
	toAddress string,
	amount money.Value,
	fee money.Value,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, accountSubmitCall{
		chain:       chain,
		fromAddress: fromAddress,
		toAddress:   toAddress,
		amount:      amount,
		fee:         fee,
	})
	return f.txHash, f.err
}
