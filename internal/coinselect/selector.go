package coinselect

import (
	"sort"

	"github.com/sailwallet/txengine/internal/txsize"
)

// Selector picks unspent outputs to cover a target amount plus the fee
// implied by the selection's own size. Fee and selection are mutually
// recursive: every added input grows the transaction and therefore the
// fee it must cover, so the loop re-checks coverage after each input.
type Selector struct {
	est *txsize.Estimator
}

func NewSelector(est *txsize.Estimator) *Selector {
	return &Selector{est: est}
}

// Select chooses a subset of candidates covering targetAmount plus the
// fee for the resulting transaction, largest-value candidates first to
// keep the input count (and fee) low.
//
// outputsExcludingChange is the number of recipient outputs the final
// transaction will carry; a change output is added on top when the
// remainder clears the dust threshold, otherwise the remainder is
// absorbed into the fee.
func (s *Selector) Select(
	candidates []UnspentOutput,
	targetAmount uint64,
	feeRate txsize.Fee,
	outputsExcludingChange int,
	policy Policy,
) (Result, error) {
	if targetAmount == 0 {
		return Result{}, ErrInvalidAmount
	}

	spendable := make([]UnspentOutput, 0, len(candidates))
	for _, c := range candidates {
		if policy.permits(c) {
			spendable = append(spendable, c)
		}
	}
	if len(spendable) == 0 {
		return Result{}, ErrEmptyCandidateSet
	}

	sort.SliceStable(spendable, func(i, j int) bool {
		return spendable[i].Value > spendable[j].Value
	})

	dust := s.est.DustThreshold(feeRate)

	var (
		selected []UnspentOutput
		sum      uint64
	)
	for _, c := range spendable {
		selected = append(selected, c)
		sum += c.Value

		feeWithoutChange := s.est.TransactionBytes(len(selected), outputsExcludingChange) * feeRate.PerByte
		if sum < targetAmount+feeWithoutChange {
			continue
		}

		feeWithChange := s.est.TransactionBytes(len(selected), outputsExcludingChange+1) * feeRate.PerByte
		if sum >= targetAmount+feeWithChange {
			remainder := sum - targetAmount - feeWithChange
			if remainder >= dust {
				return Result{
					Outputs:     append([]UnspentOutput(nil), selected...),
					AbsoluteFee: feeWithChange,
					Change:      remainder,
				}, nil
			}
		}

		// Covered without a change output; the sub-dust remainder is
		// folded into the fee.
		return Result{
			Outputs:     append([]UnspentOutput(nil), selected...),
			AbsoluteFee: sum - targetAmount,
			Change:      0,
		}, nil
	}

	return Result{}, ErrInsufficientFunds
}

// SweepFee returns the fee for spending every eligible candidate into
// outputsExcludingChange recipients with no change output. This is the
// fee a spend of the full available balance would pay.
func (s *Selector) SweepFee(
	candidates []UnspentOutput,
	feeRate txsize.Fee,
	outputsExcludingChange int,
	policy Policy,
) uint64 {
	var inputs int
	for _, c := range candidates {
		if policy.permits(c) {
			inputs++
		}
	}
	if inputs == 0 {
		return 0
	}
	return s.est.TransactionBytes(inputs, outputsExcludingChange) * feeRate.PerByte
}
