// internal/recommend/errors.go
package recommend

import (
	"errors"
	"fmt"
)

// The workflow's failure kinds. All of them are terminal for the
// current request; the HTTP boundary collapses everything except
// user-not-found and bad input to one generic 500, so these stay
// distinct for the logs: an operator needs to tell "the provider is
// down" apart from "the model ignored the format".
var (
	// ErrMalformedResponse: the model's answer is not valid JSON.
	ErrMalformedResponse = errors.New("recommendation is not valid JSON")
	// ErrInvalidShape: valid JSON, wrong schema.
	ErrInvalidShape = errors.New("recommendation has invalid structure")
	// ErrProvider: transport, auth, rate-limit or timeout failure from
	// the completion provider.
	ErrProvider = errors.New("recommendation provider failed")
)

// AmountMismatchError: schema valid, but the splits do not sum to the
// transaction total. Carries both values for diagnostics.
type AmountMismatchError struct {
	Expected float64
	Total    float64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("split amounts sum to %.2f, transaction total is %.2f", e.Total, e.Expected)
}
