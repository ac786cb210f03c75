// Package store persists discovery queries and the leads they produce.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// ErrNotFound is returned when a query id does not exist.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for lead discovery.
type Store interface {
	// Queries
	CreateQuery(ctx context.Context, sicCodes []string) (*model.Query, error)
	FinishQuery(ctx context.Context, id string, status model.QueryStatus, errMsg string) error
	GetQuery(ctx context.Context, id string) (*model.Query, error)
	ListQueries(ctx context.Context, limit int) ([]model.Query, error)

	// Leads
	SaveLead(ctx context.Context, lead *model.Lead) error
	ListLeads(ctx context.Context, queryID string) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns a migrated store for driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(driver) {
	case "", "sqlite":
		if dsn == "" {
			dsn = "leads.db"
		}
		st, err = NewSQLite(dsn)
	case "postgres", "postgresql":
		st, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
