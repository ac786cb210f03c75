package enrichment

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/auditlog"
	"github.com/sells-group/leads-cli/pkg/apollo"
)

// Enricher performs single-person lookups against the provider and records
// one audit row per call when an audit path is given.
type Enricher struct {
	client apollo.Client
	audit  *auditlog.Logger
	log    *zap.Logger
}

// NewEnricher creates an Enricher. A nil logger falls back to zap.L().
func NewEnricher(client apollo.Client, audit *auditlog.Logger, log *zap.Logger) *Enricher {
	if log == nil {
		log = zap.L()
	}
	if audit == nil {
		audit = auditlog.New(log)
	}
	return &Enricher{client: client, audit: audit, log: log}
}

// Enrich looks up one person. It never returns an error and never panics;
// every failure is reported through Result.Err.
func (e *Enricher) Enrich(ctx context.Context, p Person, auditPath string) Result {
	res := e.safeMatch(ctx, p)

	if auditPath != "" {
		e.audit.Append(auditPath, auditlog.Row{
			CompanyName: p.OrganizationName,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Email:       res.Data.Email(),
			Error:       res.ErrorMessage(),
		})
	}
	return res
}

func (e *Enricher) safeMatch(ctx context.Context, p Person) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("enrichment: recovered panic",
				zap.String("first_name", p.FirstName),
				zap.String("last_name", p.LastName),
				zap.Any("panic", r),
			)
			res = Result{Err: &TransportError{Err: eris.Errorf("enrichment: panic: %v", r)}}
		}
	}()
	return e.match(ctx, p)
}

func (e *Enricher) match(ctx context.Context, p Person) Result {
	if err := p.Validate(); err != nil {
		e.log.Debug("enrichment: invalid person", zap.Error(err))
		return Result{Err: err}
	}

	resp, err := e.client.MatchPerson(ctx, apollo.MatchRequest{
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		OrganizationName:     p.OrganizationName,
		RevealPersonalEmails: true,
	})
	if err != nil {
		var se *apollo.StatusError
		if errors.As(err, &se) {
			e.log.Warn("enrichment: provider rejected request",
				zap.Int("status", se.StatusCode),
				zap.String("first_name", p.FirstName),
				zap.String("last_name", p.LastName),
			)
			return Result{Err: &ProviderHTTPError{StatusCode: se.StatusCode}}
		}
		e.log.Error("enrichment: match person", zap.Error(err))
		return Result{Err: &TransportError{Err: err}}
	}

	if resp.Email() == "" {
		e.log.Debug("enrichment: no email found",
			zap.String("first_name", p.FirstName),
			zap.String("last_name", p.LastName),
		)
		return Result{}
	}
	return Result{Data: resp}
}
