package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sailwallet/txengine/internal/money"
)

// State is the lifecycle position of one transaction flow.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateInitialized     State = "initialized"
	StateAmountEntered   State = "amount_entered"
	StateFeeLevelChanged State = "fee_level_changed"
	StateConfirming      State = "confirming"
	StateExecuting       State = "executing"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// editable reports whether the user may still change amount or fee
// level. Failed is editable: a failed execution recovers back to
// amount entry.
func (s State) editable() bool {
	switch s {
	case StateInitialized, StateAmountEntered, StateFeeLevelChanged, StateConfirming, StateFailed:
		return true
	default:
		return false
	}
}

// Flow owns one in-flight transaction and serializes all host calls
// into its engine. Engine calls run outside the lock; each mutating
// call takes a generation tag and its result commits only while the
// tag is still current, so late responses from superseded edits are
// discarded instead of clobbering newer state. The in-flight fetch of
// a superseded edit is cancelled through its context.
type Flow struct {
	engine Engine

	mu         sync.Mutex
	state      State
	pt         PendingTransaction
	result     *TransactionResult
	cancelPrev context.CancelFunc

	gen atomic.Uint64
}

func NewFlow(engine Engine) *Flow {
	return &Flow{engine: engine, state: StateUninitialized}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) PendingTransaction() PendingTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pt
}

// Result returns the terminal result once the flow completed.
func (f *Flow) Result() (TransactionResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result == nil {
		return TransactionResult{}, false
	}
	return *f.result, true
}

func (f *Flow) AvailableFeeLevels() []FeeLevel {
	return f.engine.AvailableFeeLevels()
}

// Initialize runs the engine's precondition assertions and produces
// the initial pending transaction.
func (f *Flow) Initialize(ctx context.Context) (PendingTransaction, error) {
	f.mu.Lock()
	if f.state != StateUninitialized {
		f.mu.Unlock()
		return f.pt, fmt.Errorf("flow already initialized (state %s)", f.state)
	}
	f.mu.Unlock()

	f.engine.AssertInputsValid()

	pt, err := f.engine.InitializeTransaction(ctx)
	if err != nil {
		return PendingTransaction{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.pt = pt
	f.state = StateInitialized
	return pt, nil
}

// begin stamps a new generation for a mutating edit, cancelling the
// fetch of any edit still in flight, and snapshots the current value.
func (f *Flow) begin(ctx context.Context) (context.Context, uint64, PendingTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.editable() {
		return nil, 0, f.pt, fmt.Errorf("flow not editable in state %s", f.state)
	}

	gen := f.gen.Add(1)
	if f.cancelPrev != nil {
		f.cancelPrev()
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancelPrev = cancel
	return ctx, gen, f.pt, nil
}

// commit applies next only when gen is still the newest edit.
func (f *Flow) commit(gen uint64, next PendingTransaction, state State) (PendingTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen.Load() {
		return f.pt, ErrSuperseded
	}
	f.pt = next
	f.state = state
	return next, nil
}

// current returns the live value when a call erred; the previous valid
// pending transaction stays in place per the amount-bound contract.
func (f *Flow) current(gen uint64, err error) (PendingTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen.Load() {
		return f.pt, ErrSuperseded
	}
	return f.pt, err
}

func (f *Flow) UpdateAmount(ctx context.Context, amount money.Value) (PendingTransaction, error) {
	ctx, gen, snapshot, err := f.begin(ctx)
	if err != nil {
		return snapshot, err
	}

	next, err := f.engine.UpdateAmount(ctx, snapshot, amount)
	if err != nil {
		return f.current(gen, err)
	}
	return f.commit(gen, next, StateAmountEntered)
}

func (f *Flow) UpdateFeeLevel(ctx context.Context, level FeeLevel, custom *money.Value) (PendingTransaction, error) {
	ctx, gen, snapshot, err := f.begin(ctx)
	if err != nil {
		return snapshot, err
	}

	next, err := f.engine.UpdateFeeLevel(ctx, snapshot, level, custom)
	if err != nil {
		return f.current(gen, err)
	}
	return f.commit(gen, next, StateFeeLevelChanged)
}

// Validate moves the flow to confirming when the entered amount passes
// all checks. Validation failures leave the state untouched.
func (f *Flow) Validate(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAmountEntered && f.state != StateFeeLevelChanged {
		f.mu.Unlock()
		return fmt.Errorf("nothing to validate in state %s", f.state)
	}
	snapshot := f.pt
	f.mu.Unlock()

	if err := f.engine.ValidateAmount(ctx, snapshot); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateConfirming
	return nil
}

// Execute runs the terminal submission. Once dispatched it does not
// observe the caller's cancellation: the terminal state reported by the
// backend is surfaced, never a client-side abort after submission.
func (f *Flow) Execute(ctx context.Context) (TransactionResult, error) {
	f.mu.Lock()
	if f.state != StateConfirming {
		f.mu.Unlock()
		return TransactionResult{}, fmt.Errorf("cannot execute in state %s", f.state)
	}
	f.state = StateExecuting
	snapshot := f.pt
	f.mu.Unlock()

	res, err := f.engine.Execute(context.WithoutCancel(ctx), snapshot)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		return TransactionResult{}, err
	}
	f.state = StateCompleted
	f.result = &res
	return res, nil
}
