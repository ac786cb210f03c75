package sic

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

var (
	// ErrQueryRequired is returned for a blank query.
	ErrQueryRequired = eris.New("sic: query is required")
	// ErrNoAnswer is returned when the model produced no text.
	ErrNoAnswer = eris.New("sic: failed to generate an answer")
	// ErrInvalidJSON is returned when the model text is not the expected JSON.
	ErrInvalidJSON = eris.New("sic: failed to parse the response into valid JSON")
)

// Classifier finds SIC codes relevant to a business description.
type Classifier interface {
	Classify(ctx context.Context, query string) ([]model.SicCode, error)
}

type classification struct {
	Results []model.SicCode `json:"results"`
}

func buildPrompt(catalog *Catalog, query string) string {
	return `You are a helpful assistant that helps find relevant SIC (Standard Industrial Classification) codes based on business descriptions.
Your task is to analyze the query and find the most relevant SIC codes from the provided list.
Return ONLY the SIC codes and their descriptions that are most relevant to the query.
Respond with a JSON object of the form {"results": [{"sic": "...", "description": "..."}]}. Give at least 2 relevant SIC codes.
If no relevant codes are found, return {"results": []}.

Available SIC Codes:
` + catalog.Context() + `

User Query: ` + query
}

// parseResults decodes model text into SIC codes. Codes are normalized,
// duplicates dropped and blank descriptions filled from the catalog.
func parseResults(text string, catalog *Catalog) ([]model.SicCode, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoAnswer
	}
	text = stripFence(text)

	var parsed classification
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, eris.Wrap(ErrInvalidJSON, err.Error())
	}

	out := make([]model.SicCode, 0, len(parsed.Results))
	seen := map[string]bool{}
	for _, r := range parsed.Results {
		code := NormalizeCode(r.Code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			if known, ok := catalog.Lookup(code); ok {
				desc = known.Description
			}
		}
		out = append(out, model.SicCode{Code: code, Description: desc})
	}
	return out, nil
}

// stripFence removes a surrounding ```json fence if the model added one.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func validateQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrQueryRequired
	}
	return query, nil
}
