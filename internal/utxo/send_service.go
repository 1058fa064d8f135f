package utxo

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/utxo/address"
)

// SendService builds transaction outputs for UTXO transfers.
type SendService struct{}

func NewSendService() *SendService {
	return &SendService{}
}

// BuildTransfer builds the destination output plus, when change is
// non-zero, a change output back to the sender. Returns the outputs
// and the change output index, or -1 when no change output exists.
func (s *SendService) BuildTransfer(
	chain asset.Chain,
	toAddress string,
	changeAddress string,
	amount uint64,
	change uint64,
) ([]*wire.TxOut, int, error) {
	to, err := address.NewFromString(chain, toAddress)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse to address: %w", err)
	}

	outputs := []*wire.TxOut{
		{
			Value:    int64(amount),
			PkScript: to.PayToAddrScript(),
		},
	}
	changeOutputIndex := -1

	if change > 0 {
		chg, er := address.NewFromString(chain, changeAddress)
		if er != nil {
			return nil, 0, fmt.Errorf("failed to parse change address: %w", er)
		}
		outputs = append(outputs, &wire.TxOut{
			Value:    int64(change),
			PkScript: chg.PayToAddrScript(),
		})
		changeOutputIndex = 1
	}

	return outputs, changeOutputIndex, nil
}
