package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/auditlog"
	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/enrichment"
	"github.com/sells-group/leads-cli/internal/leads"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/sic"
	"github.com/sells-group/leads-cli/internal/store"
	"github.com/sells-group/leads-cli/pkg/apollo"
	"github.com/sells-group/leads-cli/pkg/companieshouse"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

func initRegistry(c *config.Config) companieshouse.Client {
	retry := resilience.DefaultRetryConfig().WithAttempts(c.CompaniesHouse.RetryAttempts)
	return companieshouse.NewClient(c.CompaniesHouse.Key,
		companieshouse.WithBaseURL(c.CompaniesHouse.BaseURL),
		companieshouse.WithRequestDelay(c.CompaniesHouse.RequestDelay()),
		companieshouse.WithPageSize(c.CompaniesHouse.PageSize),
		companieshouse.WithRetry(retry),
		companieshouse.WithLogger(zap.L()),
	)
}

func initClassifier(ctx context.Context, c *config.Config) (sic.Classifier, error) {
	catalog, err := sic.LoadCatalogFile(c.Classifier.CodesPath)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(c.Classifier.Provider) {
	case "anthropic":
		return sic.NewAnthropicClassifier(sic.AnthropicConfig{
			APIKey: c.Classifier.AnthropicKey,
			Model:  c.Classifier.AnthropicModel,
			Retry:  resilience.DefaultRetryConfig(),
			Logger: zap.L(),
		}, catalog)
	default:
		return sic.NewGeminiClassifier(ctx, sic.GeminiConfig{
			APIKey: c.Classifier.GeminiKey,
			Model:  c.Classifier.GeminiModel,
			Retry:  resilience.DefaultRetryConfig(),
			Logger: zap.L(),
		}, catalog)
	}
}

// initPipeline builds the bulk enrichment pipeline. limiter may be nil.
func initPipeline(c *config.Config, limiter *rate.Limiter) *enrichment.Pipeline {
	client := apollo.NewClient(c.Apollo.Key,
		apollo.WithBaseURL(c.Apollo.BaseURL),
		apollo.WithHTTPClient(&http.Client{Timeout: c.Apollo.Timeout()}),
	)
	enricher := enrichment.NewEnricher(client, auditlog.New(zap.L()), zap.L())
	runner := enrichment.NewRunner(enricher, enrichment.RunnerConfig{
		BatchSize:    c.Enrichment.BatchSize,
		RequestDelay: c.Enrichment.RequestDelay(),
		BatchDelay:   c.Enrichment.BatchDelay(),
		AuditPath:    c.Enrichment.AuditLogPath,
	}, enrichment.WithLimiter(limiter), enrichment.WithRunnerLogger(zap.L()))
	return enrichment.NewPipeline(runner, zap.L())
}

// leadsEnv holds what the leads and serve commands need.
type leadsEnv struct {
	Service  *leads.Service
	Pipeline *enrichment.Pipeline
	Store    store.Store
}

// Close releases the store, if any.
func (e *leadsEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initLeads wires the discovery service. The classifier is optional and is
// skipped with a warning when its credentials are missing. withStore opens
// the configured store.
func initLeads(ctx context.Context, withStore bool) (*leadsEnv, error) {
	if err := cfg.Validate("leads"); err != nil {
		return nil, err
	}

	limiter := enrichment.NewSharedLimiter(cfg.Enrichment.RequestsPerMinute)
	env := &leadsEnv{Pipeline: initPipeline(cfg, limiter)}
	opts := []leads.Option{leads.WithLogger(zap.L())}

	if err := cfg.Validate("classify"); err == nil {
		classifier, err := initClassifier(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, leads.WithClassifier(classifier))
	} else {
		zap.L().Debug("classifier not configured, free-text queries disabled", zap.Error(err))
	}

	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		env.Store = st
		opts = append(opts, leads.WithStore(st))
	}

	env.Service = leads.NewService(initRegistry(cfg), env.Pipeline, opts...)
	return env, nil
}
