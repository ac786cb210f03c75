package model

// Company is a registered company selected for officer discovery.
type Company struct {
	Number         string    `json:"number" yaml:"number"`
	Name           string    `json:"name" yaml:"name"`
	Status         string    `json:"status" yaml:"status"`
	Type           string    `json:"type" yaml:"type"`
	IncorporatedOn string    `json:"incorporation_date" yaml:"incorporation_date"`
	SicCodes       []string  `json:"sic_codes,omitempty" yaml:"sic_codes,omitempty"`
	Locality       string    `json:"locality,omitempty" yaml:"locality,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	Officers       []Officer `json:"officers,omitempty" yaml:"officers,omitempty"`
}

// Officer is an active director or secretary with a parsed name.
type Officer struct {
	Name               string `json:"name" yaml:"name"`
	FirstName          string `json:"first_name" yaml:"first_name"`
	LastName           string `json:"last_name" yaml:"last_name"`
	Role               string `json:"role" yaml:"role"`
	AppointedOn        string `json:"appointed_on" yaml:"appointed_on"`
	Occupation         string `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	Nationality        string `json:"nationality,omitempty" yaml:"nationality,omitempty"`
	CountryOfResidence string `json:"country_of_residence,omitempty" yaml:"country_of_residence,omitempty"`
	CompanyName        string `json:"company_name,omitempty" yaml:"company_name,omitempty"`
	CompanyNumber      string `json:"company_number,omitempty" yaml:"company_number,omitempty"`
}
