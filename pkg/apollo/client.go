// Package apollo provides a client for the Apollo people enrichment API.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.apollo.io"

// Client defines the Apollo operations used by the enrichment pipeline.
type Client interface {
	// MatchPerson looks up a single person and returns the provider's match.
	// A non-2xx response is reported as *StatusError.
	MatchPerson(ctx context.Context, req MatchRequest) (*MatchResponse, error)
}

// MatchRequest is the request body for POST /api/v1/people/match.
type MatchRequest struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	OrganizationName     string `json:"organization_name,omitempty"`
	RevealPersonalEmails bool   `json:"reveal_personal_emails"`
}

// MatchResponse is the enriched-person payload returned by Apollo. Person
// exposes the fields the pipeline reads; the full provider payload is kept
// and is what MarshalJSON writes back out.
type MatchResponse struct {
	Person *Person `json:"person"`

	raw json.RawMessage
}

type matchResponseFields MatchResponse

// UnmarshalJSON decodes the known fields and keeps the full payload.
func (r *MatchResponse) UnmarshalJSON(data []byte) error {
	var f matchResponseFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = MatchResponse(f)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the payload as the provider returned it, or the known
// fields when the response was built in code.
func (r MatchResponse) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(matchResponseFields(r))
}

// Raw returns the payload as received from Apollo, or nil.
func (r *MatchResponse) Raw() json.RawMessage {
	if r == nil {
		return nil
	}
	return r.raw
}

// Email returns the matched person's email, or "" when none was resolved.
func (r *MatchResponse) Email() string {
	if r == nil || r.Person == nil {
		return ""
	}
	return r.Person.Email
}

// Person is the subset of Apollo's person record the pipeline reads.
type Person struct {
	ID           string        `json:"id,omitempty"`
	FirstName    string        `json:"first_name,omitempty"`
	LastName     string        `json:"last_name,omitempty"`
	Name         string        `json:"name,omitempty"`
	Title        string        `json:"title,omitempty"`
	Email        string        `json:"email,omitempty"`
	EmailStatus  string        `json:"email_status,omitempty"`
	LinkedInURL  string        `json:"linkedin_url,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

// Organization is the employer attached to a matched person.
type Organization struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	WebsiteURL string `json:"website_url,omitempty"`
}

// StatusError reports a non-2xx response from Apollo.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apollo: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apollo API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) MatchPerson(ctx context.Context, req MatchRequest) (*MatchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/people/match", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apollo: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result MatchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal response")
	}

	return &result, nil
}
