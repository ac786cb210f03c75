package enrichment

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrRunIncomplete reports a bulk run that stopped before every record
// reached a final state.
var ErrRunIncomplete = eris.New("enrichment: run incomplete")

// ValidationError reports a missing required field. No request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderHTTPError reports a non-2xx response from the provider. It is
// final for the record; the runner never retries it.
type ProviderHTTPError struct {
	StatusCode int
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// TransportError wraps a network, decode or unexpected runtime failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
