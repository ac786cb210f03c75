package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command needs are present. mode is one
// of enrich, registry, classify, leads, store or serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "enrich":
		errs = append(errs, c.validateEnrich()...)
	case "registry":
		errs = append(errs, c.validateRegistry()...)
	case "classify":
		errs = append(errs, c.validateClassify()...)
	case "leads":
		errs = append(errs, c.validateRegistry()...)
		errs = append(errs, c.validateEnrich()...)
	case "store":
		errs = append(errs, c.validateStore()...)
	case "serve":
		errs = append(errs, c.validateRegistry()...)
		errs = append(errs, c.validateEnrich()...)
		errs = append(errs, c.validateStore()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateEnrich() []string {
	var errs []string
	if c.Apollo.Key == "" {
		errs = append(errs, "apollo.key is required (APOLLO_API_KEY)")
	}
	if c.Enrichment.BatchSize <= 0 {
		errs = append(errs, "enrichment.batch_size must be > 0")
	}
	if c.Enrichment.RequestDelayMs < 0 || c.Enrichment.BatchDelayMs < 0 {
		errs = append(errs, "enrichment delays must be >= 0")
	}
	return errs
}

func (c *Config) validateRegistry() []string {
	var errs []string
	if c.CompaniesHouse.Key == "" {
		errs = append(errs, "companies_house.key is required (COMPANIES_HOUSE_API_KEY)")
	}
	if c.CompaniesHouse.PageSize <= 0 || c.CompaniesHouse.PageSize > 5000 {
		errs = append(errs, "companies_house.page_size must be between 1 and 5000")
	}
	return errs
}

func (c *Config) validateClassify() []string {
	switch strings.ToLower(c.Classifier.Provider) {
	case "gemini", "":
		if c.Classifier.GeminiKey == "" {
			return []string{"classifier.gemini_key is required (GOOGLE_AI_API_KEY)"}
		}
	case "anthropic":
		if c.Classifier.AnthropicKey == "" {
			return []string{"classifier.anthropic_key is required (ANTHROPIC_API_KEY)"}
		}
	default:
		return []string{"classifier.provider must be gemini or anthropic"}
	}
	return nil
}

func (c *Config) validateStore() []string {
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "":
		return nil
	case "postgres", "postgresql":
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required for postgres"}
		}
		return nil
	default:
		return []string{"store.driver must be sqlite or postgres"}
	}
}
