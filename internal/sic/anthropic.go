package sic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicConfig configures an AnthropicClassifier.
type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   resilience.RetryConfig
	Logger  *zap.Logger
}

// AnthropicClassifier asks Claude for the JSON object described in the prompt.
type AnthropicClassifier struct {
	client  sdk.Client
	model   string
	catalog *Catalog
	retry   resilience.RetryConfig
	log     *zap.Logger
}

// NewAnthropicClassifier creates a classifier backed by the Anthropic
// Messages API. SDK-level retries are disabled in favour of resilience.DoVal.
func NewAnthropicClassifier(cfg AnthropicConfig, catalog *Catalog) (*AnthropicClassifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("sic: anthropic api key is required")
	}
	if catalog == nil {
		return nil, eris.New("sic: catalog is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}
	retry := cfg.Retry
	retry.OnRetry = resilience.RetryLogger(log, "anthropic", "classify")

	return &AnthropicClassifier{
		client:  sdk.NewClient(opts...),
		model:   modelName,
		catalog: catalog,
		retry:   retry,
		log:     log,
	}, nil
}

// Classify returns the SIC codes Claude judges relevant to query.
func (a *AnthropicClassifier) Classify(ctx context.Context, query string) ([]model.SicCode, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: 1024,
		System: []sdk.TextBlockParam{
			{Text: "Respond with JSON only. Do not wrap the JSON in prose."},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(a.catalog, query))),
		},
	}

	text, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (string, error) {
		msg, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return "", classifyAnthropicErr(err)
		}
		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return b.String(), nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "sic: anthropic create message")
	}

	codes, err := parseResults(text, a.catalog)
	if err != nil {
		return nil, err
	}
	a.log.Debug("sic: classified query",
		zap.String("provider", "anthropic"),
		zap.String("query", query),
		zap.Int("codes", len(codes)),
	)
	return codes, nil
}

func classifyAnthropicErr(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}
