// Package enrichment resolves officer names to contact emails through the
// Apollo people-match API under a fixed request budget.
package enrichment

import (
	"strings"
)

// Person is one enrichment request.
type Person struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Key is the identity used for deduplication:
// lower(first)-lower(last)-lower(organization).
func (p Person) Key() string {
	return strings.ToLower(p.FirstName) + "-" + strings.ToLower(p.LastName) + "-" + strings.ToLower(p.OrganizationName)
}

// Validate checks the required name fields.
func (p Person) Validate() error {
	switch {
	case p.FirstName == "":
		return &ValidationError{Field: "first_name", Message: "first name is required"}
	case p.LastName == "":
		return &ValidationError{Field: "last_name", Message: "last name is required"}
	}
	return nil
}
