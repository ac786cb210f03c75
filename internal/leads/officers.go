// Package leads discovers company officers by SIC code and turns them into
// enriched contact leads.
package leads

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/pkg/companieshouse"
)

var surnameCaser = cases.Title(language.BritishEnglish)

// ParseOfficerName splits a registry officer name. "SURNAME, Given Names"
// yields the given names as first name and the title-cased surname as last
// name. Only the segment after the first comma is kept as given names, so a
// trailing suffix ("SMITH, John, Jr") is dropped. Any other form splits on the
// first space.
func ParseOfficerName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if surname, rest, ok := strings.Cut(name, ","); ok {
		given, _, _ := strings.Cut(rest, ",")
		return strings.TrimSpace(given), surnameCaser.String(strings.TrimSpace(surname))
	}
	first, rest, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(rest)
}

// FromRegistryOfficer converts a registry officer into the domain model.
func FromRegistryOfficer(o companieshouse.Officer, company model.Company) model.Officer {
	first, last := ParseOfficerName(o.Name)
	return model.Officer{
		Name:               o.Name,
		FirstName:          first,
		LastName:           last,
		Role:               o.Role,
		AppointedOn:        o.AppointedOn,
		Occupation:         o.Occupation,
		Nationality:        o.Nationality,
		CountryOfResidence: o.CountryOfResidence,
		CompanyName:        company.Name,
		CompanyNumber:      company.Number,
	}
}

// FromRegistryCompany converts a registry search hit into the domain model.
func FromRegistryCompany(c companieshouse.Company) model.Company {
	out := model.Company{
		Number:         c.Number,
		Name:           c.Name,
		Status:         c.Status,
		Type:           c.Type,
		IncorporatedOn: c.IncorporatedOn,
		SicCodes:       c.SicCodes,
	}
	if c.Address != nil {
		out.Locality = c.Address.Locality
		out.PostalCode = c.Address.PostalCode
	}
	return out
}

// UniqueOfficers flattens officers across companies, keeping the first
// officer seen for each lower(first)-lower(last) key. Officers missing either
// name are skipped. Each result carries its company name and number.
func UniqueOfficers(companies []model.Company) []model.Officer {
	seen := map[string]bool{}
	var out []model.Officer
	for _, c := range companies {
		for _, o := range c.Officers {
			if o.FirstName == "" || o.LastName == "" {
				continue
			}
			key := strings.ToLower(o.FirstName) + "-" + strings.ToLower(o.LastName)
			if seen[key] {
				continue
			}
			seen[key] = true
			o.CompanyName = c.Name
			o.CompanyNumber = c.Number
			out = append(out, o)
		}
	}
	return out
}
