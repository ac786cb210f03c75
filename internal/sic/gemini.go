package sic

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/resilience"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig configures a GeminiClassifier.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API base URL.
	BaseURL string
	Retry   resilience.RetryConfig
	Logger  *zap.Logger
}

// GeminiClassifier asks Gemini for structured JSON output constrained by a
// response schema.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	catalog *Catalog
	retry   resilience.RetryConfig
	log     *zap.Logger
}

var resultsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"results": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"sic":         {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
				},
			},
		},
	},
	Required: []string{"results"},
}

// NewGeminiClassifier creates a classifier backed by the Gemini API.
func NewGeminiClassifier(ctx context.Context, cfg GeminiConfig, catalog *Catalog) (*GeminiClassifier, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("sic: gemini api key is required")
	}
	if catalog == nil {
		return nil, eris.New("sic: catalog is required")
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "sic: create gemini client")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}
	retry := cfg.Retry
	retry.OnRetry = resilience.RetryLogger(log, "gemini", "classify")

	return &GeminiClassifier{
		client:  client,
		model:   modelName,
		catalog: catalog,
		retry:   retry,
		log:     log,
	}, nil
}

// Classify returns the SIC codes Gemini judges relevant to query.
func (g *GeminiClassifier) Classify(ctx context.Context, query string) ([]model.SicCode, error) {
	query, err := validateQuery(query)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(g.catalog, query)
	text, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   resultsSchema,
		})
		if err != nil {
			return "", classifyGeminiErr(err)
		}
		return resp.Text(), nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "sic: gemini generate content")
	}

	codes, err := parseResults(text, g.catalog)
	if err != nil {
		return nil, err
	}
	g.log.Debug("sic: classified query",
		zap.String("provider", "gemini"),
		zap.String("query", query),
		zap.Int("codes", len(codes)),
	)
	return codes, nil
}

func classifyGeminiErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return resilience.NewTransientError(err, apiErr.Code)
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return resilience.NewTransientError(err, 0)
	}
	return err
}
