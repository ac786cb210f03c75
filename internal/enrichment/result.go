package enrichment

import (
	"encoding/json"

	"github.com/sells-group/leads-cli/pkg/apollo"
)

// Status is the terminal state of one record.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusNotFound  Status = "not_found"
)

// Result is the uniform outcome of one enrichment call. Data is set only when
// the provider resolved an email; Err is set only on failure. Both are nil
// when the provider answered but had no email.
type Result struct {
	Data *apollo.MatchResponse
	Err  error
}

// Status classifies the result.
func (r Result) Status() Status {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Data != nil:
		return StatusSucceeded
	default:
		return StatusNotFound
	}
}

// ErrorMessage returns the failure message, or "" when there is none.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MarshalJSON renders {"data": ..., "error": ...} with nulls for absent values.
func (r Result) MarshalJSON() ([]byte, error) {
	var msg *string
	if r.Err != nil {
		m := r.Err.Error()
		msg = &m
	}
	return json.Marshal(struct {
		Data  *apollo.MatchResponse `json:"data"`
		Error *string               `json:"error"`
	}{r.Data, msg})
}
