package engine

import (
	"errors"
	"fmt"

	"github.com/sailwallet/txengine/internal/money"
)

var (
	// ErrQuoteExpired means the stored quote passed its expiry before
	// execution; the host must trigger a re-fetch, the engine never
	// silently substitutes a stale quote.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrSuperseded means a flow operation finished after a newer one
	// had already started; its result was discarded.
	ErrSuperseded = errors.New("operation superseded by a newer request")

	// ErrNoQuote means Execute ran before any amount update fetched a
	// quote for a trading path.
	ErrNoQuote = errors.New("no quote fetched")
)

// ValidationCode classifies a recoverable amount-validation failure.
type ValidationCode string

const (
	BelowMinimum    ValidationCode = "below_minimum"
	AboveMaximum    ValidationCode = "above_maximum"
	BelowDust       ValidationCode = "below_dust"
	LimitsExceeded  ValidationCode = "limits_exceeded"
	InvalidFeeLevel ValidationCode = "invalid_fee_level"
)

// ValidationError is returned for user-correctable input problems.
// Bound carries the violated numeric bound so the host can render an
// actionable message.
type ValidationError struct {
	Code  ValidationCode
	Bound money.Value
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s (bound %s)", e.Code, e.Bound.String())
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
