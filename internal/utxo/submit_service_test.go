package utxo

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/coinselect"
)

const (
	toAddr     = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	changeAddr = "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"
	inputHash  = "2222222222222222222222222222222222222222222222222222222222222222"
)

type fakeSigner struct {
	inputValues []uint64
	signed      *wire.MsgTx
}

func (f *fakeSigner) Sign(_ context.Context, _ asset.Chain, tx *wire.MsgTx, inputValues []uint64) (*wire.MsgTx, error) {
	f.inputValues = inputValues
	f.signed = tx
	return tx, nil
}

type fakeBroadcaster struct {
	sent *wire.MsgTx
	hash *chainhash.Hash
}

func (f *fakeBroadcaster) SendRawTransaction(_ context.Context, _ asset.Chain, tx *wire.MsgTx) (*chainhash.Hash, error) {
	f.sent = tx
	return f.hash, nil
}

func TestSubmitWithChange(t *testing.T) {
	hash, err := chainhash.NewHashFromStr("3333333333333333333333333333333333333333333333333333333333333333")
	require.NoError(t, err)

	signer := &fakeSigner{}
	broadcaster := &fakeBroadcaster{hash: hash}
	svc := NewSubmitService(logrus.New(), NewSendService(), signer, broadcaster)

	selection := coinselect.Result{
		Outputs: []coinselect.UnspentOutput{
			{TxHash: inputHash, Index: 1, Value: 100_000},
		},
		AbsoluteFee: 2260,
		Change:      87_740,
	}

	txHash, err := svc.Submit(context.Background(), asset.Bitcoin, selection, changeAddr, toAddr, 10_000)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), txHash)

	tx := broadcaster.sent
	require.NotNil(t, tx)
	require.Len(t, tx.TxIn, 1)
	assert.Equal(t, uint32(1), tx.TxIn[0].PreviousOutPoint.Index)
	assert.Equal(t, inputHash, tx.TxIn[0].PreviousOutPoint.Hash.String())

	require.Len(t, tx.TxOut, 2)
	assert.Equal(t, int64(10_000), tx.TxOut[0].Value)
	assert.Equal(t, int64(87_740), tx.TxOut[1].Value)

	assert.Equal(t, []uint64{100_000}, signer.inputValues)
}

func TestSubmitWithoutChange(t *testing.T) {
	hash, err := chainhash.NewHashFromStr("3333333333333333333333333333333333333333333333333333333333333333")
	require.NoError(t, err)

	signer := &fakeSigner{}
	broadcaster := &fakeBroadcaster{hash: hash}
	svc := NewSubmitService(logrus.New(), NewSendService(), signer, broadcaster)

	selection := coinselect.Result{
		Outputs: []coinselect.UnspentOutput{
			{TxHash: inputHash, Index: 0, Value: 100_000},
		},
		AbsoluteFee: 3000,
		Change:      0,
	}

	_, err = svc.Submit(context.Background(), asset.Bitcoin, selection, changeAddr, toAddr, 97_000)
	require.NoError(t, err)

	require.Len(t, broadcaster.sent.TxOut, 1)
	assert.Equal(t, int64(97_000), broadcaster.sent.TxOut[0].Value)
}

func TestSubmitInvalidInputHash(t *testing.T) {
	svc := NewSubmitService(logrus.New(), NewSendService(), &fakeSigner{}, &fakeBroadcaster{})

	selection := coinselect.Result{
		Outputs: []coinselect.UnspentOutput{{TxHash: "not-hex", Value: 1000}},
	}
	_, err := svc.Submit(context.Background(), asset.Bitcoin, selection, changeAddr, toAddr, 500)
	assert.Error(t, err)
}

func TestBuildTransfer(t *testing.T) {
	svc := NewSendService()

	outputs, changeIndex, err := svc.BuildTransfer(asset.Bitcoin, toAddr, changeAddr, 10_000, 5000)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, 1, changeIndex)
	assert.Equal(t, int64(10_000), outputs[0].Value)
	assert.Equal(t, int64(5000), outputs[1].Value)
	assert.NotEqual(t, outputs[0].PkScript, outputs[1].PkScript)

	outputs, changeIndex, err = svc.BuildTransfer(asset.Bitcoin, toAddr, changeAddr, 10_000, 0)
	require.NoError(t, err)
	assert.Len(t, outputs, 1)
	assert.Equal(t, -1, changeIndex)
}

func TestBuildTransferBadAddress(t *testing.T) {
	svc := NewSendService()
	_, _, err := svc.BuildTransfer(asset.Bitcoin, "garbage", changeAddr, 10_000, 0)
	assert.Error(t, err)
}
