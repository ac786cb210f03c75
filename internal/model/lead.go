package model

import "time"

// QueryStatus is the lifecycle state of a discovery query.
type QueryStatus string

const (
	QueryStatusRunning  QueryStatus = "running"
	QueryStatusComplete QueryStatus = "complete"
	QueryStatusFailed   QueryStatus = "failed"
)

// Query records one discovery run: which SIC codes were searched and how it
// ended.
type Query struct {
	ID         string      `json:"id" yaml:"id"`
	SicCodes   []string    `json:"sic_codes" yaml:"sic_codes"`
	Status     QueryStatus `json:"status" yaml:"status"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// Lead is an officer that enrichment resolved to an email address.
type Lead struct {
	ID        string    `json:"id" yaml:"id"`
	QueryID   string    `json:"query_id" yaml:"query_id"`
	Officer   Officer   `json:"officer" yaml:"officer"`
	Email     string    `json:"email" yaml:"email"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
