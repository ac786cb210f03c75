package leads

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leads-cli/internal/enrichment"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/sic"
	"github.com/sells-group/leads-cli/internal/store"
	"github.com/sells-group/leads-cli/pkg/companieshouse"
)

// Request describes one discovery run. SicCodes take precedence over Query;
// Query is classified into codes when no codes are given.
type Request struct {
	Query      string   `json:"query,omitempty"`
	SicCodes   []string `json:"sic_codes,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
	Page       int      `json:"page,omitempty"`
}

// Report summarizes a discovery run.
type Report struct {
	Query     *model.Query `json:"query,omitempty" yaml:"query,omitempty"`
	SicCodes  []string     `json:"sic_codes" yaml:"sic_codes"`
	Companies int          `json:"companies" yaml:"companies"`
	Officers  int          `json:"officers" yaml:"officers"`
	NotFound  int          `json:"not_found" yaml:"not_found"`
	Failed    int          `json:"failed" yaml:"failed"`
	Leads     []model.Lead `json:"leads" yaml:"leads"`
}

// Option configures a Service.
type Option func(*Service)

// WithClassifier enables free-text queries.
func WithClassifier(c sic.Classifier) Option {
	return func(s *Service) {
		s.classifier = c
	}
}

// WithStore persists queries and leads.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithOfficerConcurrency bounds concurrent officer lookups.
func WithOfficerConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.officerConcurrency = n
		}
	}
}

// Service runs discovery: classify, search companies, list officers,
// enrich and persist.
type Service struct {
	registry           companieshouse.Client
	pipeline           *enrichment.Pipeline
	classifier         sic.Classifier
	store              store.Store
	log                *zap.Logger
	officerConcurrency int

	wg sync.WaitGroup
}

// NewService creates a Service.
func NewService(registry companieshouse.Client, pipeline *enrichment.Pipeline, opts ...Option) *Service {
	s := &Service{
		registry:           registry,
		pipeline:           pipeline,
		log:                zap.L(),
		officerConcurrency: 4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ResolveSicCodes returns the request's codes, classifying Query when no
// codes were given.
func (s *Service) ResolveSicCodes(ctx context.Context, req Request) ([]string, error) {
	if len(req.SicCodes) > 0 {
		codes := make([]string, 0, len(req.SicCodes))
		for _, c := range req.SicCodes {
			if n := sic.NormalizeCode(c); n != "" {
				codes = append(codes, n)
			}
		}
		if len(codes) > 0 {
			return codes, nil
		}
	}
	if req.Query == "" {
		return nil, eris.New("leads: sic codes or a query is required")
	}
	if s.classifier == nil {
		return nil, eris.New("leads: no classifier configured for query")
	}

	found, err := s.classifier.Classify(ctx, req.Query)
	if err != nil {
		return nil, eris.Wrap(err, "leads: classify query")
	}
	codes := make([]string, 0, len(found))
	for _, c := range found {
		codes = append(codes, c.Code)
	}
	if len(codes) == 0 {
		return nil, eris.Errorf("leads: no sic codes match %q", req.Query)
	}
	return codes, nil
}

// Discover runs a discovery synchronously.
func (s *Service) Discover(ctx context.Context, req Request) (*Report, error) {
	codes, err := s.ResolveSicCodes(ctx, req)
	if err != nil {
		return nil, err
	}
	q, err := s.begin(ctx, codes)
	if err != nil {
		return nil, err
	}

	report, err := s.run(ctx, q, codes, req)
	s.finish(ctx, q, err)
	return report, err
}

// Submit records a query and runs it in the background. ctx bounds the
// background run. A store is required.
func (s *Service) Submit(ctx context.Context, req Request) (*model.Query, error) {
	if s.store == nil {
		return nil, eris.New("leads: submit requires a store")
	}
	codes, err := s.ResolveSicCodes(ctx, req)
	if err != nil {
		return nil, err
	}
	q, err := s.begin(ctx, codes)
	if err != nil {
		return nil, err
	}

	submitted := *q
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err := s.run(ctx, q, codes, req)
		s.finish(ctx, q, err)
	}()
	return &submitted, nil
}

// Wait blocks until every submitted run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) begin(ctx context.Context, codes []string) (*model.Query, error) {
	if s.store == nil {
		return nil, nil
	}
	q, err := s.store.CreateQuery(ctx, codes)
	if err != nil {
		return nil, eris.Wrap(err, "leads: create query")
	}
	return q, nil
}

func (s *Service) finish(ctx context.Context, q *model.Query, runErr error) {
	if q == nil {
		return
	}
	status, msg := model.QueryStatusComplete, ""
	if runErr != nil {
		status, msg = model.QueryStatusFailed, runErr.Error()
	}
	if err := s.store.FinishQuery(context.WithoutCancel(ctx), q.ID, status, msg); err != nil {
		s.log.Error("leads: finish query", zap.String("query_id", q.ID), zap.Error(err))
		return
	}
	q.Status, q.Error = status, msg
}

func (s *Service) run(ctx context.Context, q *model.Query, codes []string, req Request) (*Report, error) {
	report := &Report{Query: q, SicCodes: codes, Leads: []model.Lead{}}

	companies, err := s.searchCompanies(ctx, codes, req)
	if err != nil {
		return report, err
	}
	report.Companies = len(companies)

	if err := s.fetchOfficers(ctx, companies); err != nil {
		return report, err
	}
	officers := UniqueOfficers(companies)
	report.Officers = len(officers)
	s.log.Info("leads: officers collected",
		zap.Int("companies", len(companies)),
		zap.Int("unique_officers", len(officers)),
	)

	persons := make([]enrichment.Person, len(officers))
	byKey := make(map[string]model.Officer, len(officers))
	for i, o := range officers {
		persons[i] = enrichment.Person{FirstName: o.FirstName, LastName: o.LastName, OrganizationName: o.CompanyName}
		byKey[persons[i].Key()] = o
	}

	seen := 0
	for out := range s.pipeline.StreamBulk(ctx, persons) {
		seen++
		switch out.Status() {
		case enrichment.StatusNotFound:
			report.NotFound++
			continue
		case enrichment.StatusFailed:
			report.Failed++
			continue
		}

		lead := model.Lead{
			Officer: byKey[out.Person.Key()],
			Email:   out.Result.Data.Email(),
			Source:  "apollo",
		}
		if p := out.Result.Data.Person; p != nil {
			lead.Title = p.Title
		}
		if q != nil {
			lead.QueryID = q.ID
			if err := s.store.SaveLead(ctx, &lead); err != nil {
				s.log.Error("leads: save lead",
					zap.String("query_id", q.ID),
					zap.String("email", lead.Email),
					zap.Error(err),
				)
			}
		}
		report.Leads = append(report.Leads, lead)
	}

	if err := ctx.Err(); err != nil {
		return report, eris.Wrap(err, "leads: discovery interrupted")
	}
	// Officers are already unique, so every person should produce one outcome.
	if seen < len(persons) {
		return report, eris.Wrapf(enrichment.ErrRunIncomplete, "leads: enriched %d of %d officers", seen, len(persons))
	}
	s.log.Info("leads: discovery complete",
		zap.Int("leads", len(report.Leads)),
		zap.Int("not_found", report.NotFound),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) searchCompanies(ctx context.Context, codes []string, req Request) ([]model.Company, error) {
	res, err := s.registry.SearchCompanies(ctx, companieshouse.SearchParams{
		SicCodes:   codes,
		Page:       req.Page,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return nil, eris.Wrap(err, "leads: search companies")
	}
	companies := make([]model.Company, len(res.Companies))
	for i, c := range res.Companies {
		companies[i] = FromRegistryCompany(c)
	}
	return companies, nil
}

// fetchOfficers fills each company's officers in place. A failed lookup is
// logged and leaves that company without officers.
func (s *Service) fetchOfficers(ctx context.Context, companies []model.Company) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.officerConcurrency)

	for i := range companies {
		g.Go(func() error {
			c := &companies[i]
			res, err := s.registry.Officers(gctx, c.Number)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn("leads: fetch officers",
					zap.String("company_number", c.Number),
					zap.Error(err),
				)
				return nil
			}
			c.Officers = make([]model.Officer, 0, len(res.Officers))
			for _, o := range res.Officers {
				c.Officers = append(c.Officers, FromRegistryOfficer(o, *c))
			}
			return nil
		})
	}

	return eris.Wrap(g.Wait(), "leads: fetch officers")
}
