// Package companieshouse provides a client for the UK Companies House public
// data API: advanced company search by SIC code and officer listings.
package companieshouse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leads-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://api.company-information.service.gov.uk"

	// MaxResults is the most companies a single search will collect.
	MaxResults = 50000
	// MaxPageSize is the largest page the advanced search endpoint serves.
	MaxPageSize = 5000
)

// relevantRoles are the officer roles kept by Officers.
var relevantRoles = map[string]bool{
	"director":           true,
	"secretary":          true,
	"managing-director":  true,
	"corporate-director": true,
}

// Client defines the Companies House operations used by lead discovery.
type Client interface {
	SearchCompanies(ctx context.Context, params SearchParams) (*SearchResult, error)
	Officers(ctx context.Context, companyNumber string) (*OfficersResult, error)
}

// SearchParams selects active companies by SIC code.
type SearchParams struct {
	SicCodes   []string
	Page       int
	MaxResults int
}

// SearchResult is one page of companies.
type SearchResult struct {
	Companies    []Company `json:"companies"`
	TotalResults int       `json:"total_results"`
	PageNumber   int       `json:"page_number"`
}

// Company is a registered company as returned by advanced search.
type Company struct {
	Number         string   `json:"company_number"`
	Name           string   `json:"company_name"`
	Status         string   `json:"company_status"`
	Type           string   `json:"company_type"`
	Address        *Address `json:"registered_office_address,omitempty"`
	IncorporatedOn string   `json:"date_of_creation"`
	SicCodes       []string `json:"sic_codes,omitempty"`
}

// Address is a registered office address.
type Address struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Region       string `json:"region,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Officer is an appointed company officer.
type Officer struct {
	Name               string `json:"name"`
	Role               string `json:"officer_role"`
	AppointedOn        string `json:"appointed_on"`
	ResignedOn         string `json:"resigned_on,omitempty"`
	Occupation         string `json:"occupation,omitempty"`
	Nationality        string `json:"nationality,omitempty"`
	CountryOfResidence string `json:"country_of_residence,omitempty"`
}

// OfficersResult holds the active, relevant officers of one company.
type OfficersResult struct {
	Officers     []Officer `json:"officers"`
	TotalResults int       `json:"total_results"`
	ActiveCount  int       `json:"active_count"`
}

type searchResponse struct {
	PageNumber   int       `json:"page_number"`
	Kind         string    `json:"kind"`
	TotalResults int       `json:"total_results"`
	Items        []Company `json:"items"`
}

type officersResponse struct {
	Items         []Officer `json:"items"`
	TotalResults  int       `json:"total_results"`
	ActiveCount   int       `json:"active_count"`
	ResignedCount int       `json:"resigned_count"`
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

// WithRequestDelay sets the minimum spacing between requests. Zero disables
// spacing.
func WithRequestDelay(d time.Duration) Option {
	return func(c *httpClient) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithPageSize sets the search page size, capped at MaxPageSize.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 && n <= MaxPageSize {
			c.pageSize = n
		}
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(log *zap.Logger) Option {
	return func(c *httpClient) {
		c.log = log
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	log      *zap.Logger
}

// NewClient creates a Companies House client. Requests are spaced 100ms apart
// by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		pageSize: MaxPageSize,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		retry:   resilience.DefaultRetryConfig(),
		log:     zap.L(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger(c.log, "companies_house", "get")
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if len(params.SicCodes) == 0 {
		return nil, eris.New("companies house: at least one sic code is required")
	}

	limit := params.MaxResults
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	size := min(c.pageSize, limit)
	batches := (limit + size - 1) / size

	var all []Company
	total := 0
	for batch := 0; batch < batches; batch++ {
		if len(all) >= limit {
			break
		}

		q := url.Values{}
		q.Set("company_status", "active")
		q.Set("size", strconv.Itoa(size))
		q.Set("start_index", strconv.Itoa(params.Page*limit+batch*size))
		q.Set("sic_codes", strings.Join(params.SicCodes, ","))

		var resp searchResponse
		if err := c.get(ctx, "/advanced-search/companies?"+q.Encode(), &resp); err != nil {
			return nil, eris.Wrap(err, "companies house: search companies")
		}

		if batch == 0 {
			total = min(resp.TotalResults, limit)
		}
		if len(resp.Items) == 0 {
			break
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < size {
			break
		}
	}

	active := make([]Company, 0, len(all))
	for _, co := range all {
		if co.Status == "active" {
			active = append(active, co)
		}
	}

	return &SearchResult{
		Companies:    active,
		TotalResults: total,
		PageNumber:   params.Page,
	}, nil
}

func (c *httpClient) Officers(ctx context.Context, companyNumber string) (*OfficersResult, error) {
	if strings.TrimSpace(companyNumber) == "" {
		return nil, eris.New("companies house: company number is required")
	}

	var resp officersResponse
	path := "/company/" + url.PathEscape(companyNumber) + "/officers"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, eris.Wrapf(err, "companies house: officers for %s", companyNumber)
	}

	officers := make([]Officer, 0, len(resp.Items))
	for _, o := range resp.Items {
		if o.ResignedOn != "" || !relevantRoles[strings.ToLower(o.Role)] {
			continue
		}
		officers = append(officers, o)
	}

	return &OfficersResult{
		Officers:     officers,
		TotalResults: resp.TotalResults,
		ActiveCount:  resp.ActiveCount,
	}, nil
}

// get performs a rate-limited, retried GET and decodes the JSON body into out.
func (c *httpClient) get(ctx context.Context, path string, out any) error {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.SetBasicAuth(c.apiKey, "")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "read response")
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := eris.Errorf("unexpected status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
			}
			return nil, statusErr
		}
		return respBody, nil
	})
	if err != nil {
		return err
	}

	return eris.Wrap(json.Unmarshal(body, out), "unmarshal response")
}
