package coinselect

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds means no subset of candidates covers the
	// target amount plus the fee at that subset's size.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount means the target amount is zero.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmptyCandidateSet means no spendable candidates remain after
	// applying the policy filters.
	ErrEmptyCandidateSet = errors.New("empty candidate set")
)

// UnspentOutput is a spendable output as reported by the UTXO-set
// provider. Identity is (TxHash, Index).
type UnspentOutput struct {
	TxHash        string
	Index         uint32
	Value         uint64
	Replayable    bool
	Confirmations uint32
}

// OutpointKey returns the canonical "hash:index" identity.
func (u UnspentOutput) OutpointKey() string {
	return fmt.Sprintf("%s:%d", u.TxHash, u.Index)
}

// Policy controls which candidates are eligible for selection. The
// zero value is the safe default: replayable outputs (post-fork
// duplicates) and unconfirmed outputs are both excluded.
type Policy struct {
	AllowReplayable  bool
	AllowUnconfirmed bool
}

func (p Policy) permits(u UnspentOutput) bool {
	if u.Replayable && !p.AllowReplayable {
		return false
	}
	if u.Confirmations == 0 && !p.AllowUnconfirmed {
		return false
	}
	return true
}

// SpendableSum returns the total value of the candidates the policy
// permits. A reported balance above this sum cannot be spent here.
func SpendableSum(candidates []UnspentOutput, policy Policy) uint64 {
	var sum uint64
	for _, c := range candidates {
		if policy.permits(c) {
			sum += c.Value
		}
	}
	return sum
}

// Result is one successful selection. It is never mutated; re-running
// selection produces a new Result.
//
// Invariants: sum(Outputs.Value) == target + AbsoluteFee + Change, and
// Change is either zero or at least the dust threshold for the fee
// rate used.
type Result struct {
	Outputs     []UnspentOutput
	AbsoluteFee uint64
	Change      uint64
}

// Total returns the summed value of the selected outputs.
func (r Result) Total() uint64 {
	var sum uint64
	for _, o := range r.Outputs {
		sum += o.Value
	}
	return sum
}
