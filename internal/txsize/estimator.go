package txsize

import "github.com/sailwallet/txengine/internal/asset"

// Fee is a per-byte fee rate in minor units (sats/byte or equivalent).
type Fee struct {
	PerByte uint64
}

// Estimator estimates the serialized size of a legacy P2PKH-style
// transaction from its input and output counts. The constants differ
// per chain variant; defaults match Bitcoin mainnet.
type Estimator struct {
	CostBase      uint64
	CostPerInput  uint64
	CostPerOutput uint64
}

const (
	defaultCostBase      = 10
	defaultCostPerInput  = 148
	defaultCostPerOutput = 34
)

// NewEstimator returns an estimator with the default P2PKH constants.
func NewEstimator() *Estimator {
	return &Estimator{
		CostBase:      defaultCostBase,
		CostPerInput:  defaultCostPerInput,
		CostPerOutput: defaultCostPerOutput,
	}
}

// ForChain returns the estimator configured for a chain variant. All
// supported UTXO chains serialize like Bitcoin; the table exists so a
// variant with different sizing gets its own row rather than a patch
// at call sites.
func ForChain(chain asset.Chain) *Estimator {
	switch chain {
	case asset.Bitcoin, asset.BitcoinCash, asset.Litecoin, asset.Dogecoin:
		return NewEstimator()
	default:
		return NewEstimator()
	}
}

// TransactionBytes returns the estimated serialized size of a
// transaction with the given input and output counts.
func (e *Estimator) TransactionBytes(inputs, outputs int) uint64 {
	return e.CostBase + uint64(inputs)*e.CostPerInput + uint64(outputs)*e.CostPerOutput
}

// DustThreshold returns the minimum change value that is economically
// worth creating at the given fee rate: the marginal cost of the bytes
// a change output adds now plus the input that spends it later. The
// base cost is paid regardless of change and does not enter.
func (e *Estimator) DustThreshold(fee Fee) uint64 {
	return (e.CostPerInput + e.CostPerOutput) * fee.PerByte
}
