// Package model defines the domain types shared by discovery, enrichment,
// storage and the CLI.
package model

// SicCode is a UK Standard Industrial Classification code.
type SicCode struct {
	Code        string `json:"sic" yaml:"sic"`
	Description string `json:"description" yaml:"description"`
}
