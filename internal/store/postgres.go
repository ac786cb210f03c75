package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// Pool is the subset of *pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS queries (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	sic_codes   JSONB NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	query_id   TEXT NOT NULL REFERENCES queries(id),
	officer    JSONB NOT NULL,
	email      TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT 'apollo',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_query_id ON leads(query_id);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateQuery(ctx context.Context, sicCodes []string) (*model.Query, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	codesJSON, err := json.Marshal(sicCodes)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal sic codes")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO queries (id, sic_codes, status, created_at) VALUES ($1, $2, $3, $4)`,
		id, codesJSON, string(model.QueryStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert query")
	}

	return &model.Query{
		ID:        id,
		SicCodes:  sicCodes,
		Status:    model.QueryStatusRunning,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) FinishQuery(ctx context.Context, id string, status model.QueryStatus, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE queries SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		string(status), errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish query %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "query %s", id)
	}
	return nil
}

func (s *PostgresStore) GetQuery(ctx context.Context, id string) (*model.Query, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries WHERE id = $1`,
		id,
	)
	q, err := scanPgQuery(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get query %s", id)
	}
	return q, nil
}

func (s *PostgresStore) ListQueries(ctx context.Context, limit int) ([]model.Query, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries
		 ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list queries")
	}
	defer rows.Close()

	var out []model.Query
	for rows.Next() {
		q, err := scanPgQuery(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan query")
		}
		out = append(out, *q)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list queries iterate")
}

func (s *PostgresStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	prepareLead(lead)

	officerJSON, err := json.Marshal(lead.Officer)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal officer")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO leads (id, query_id, officer, email, title, source, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lead.ID, lead.QueryID, officerJSON, lead.Email, lead.Title, lead.Source, lead.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert lead for query %s", lead.QueryID)
}

func (s *PostgresStore) ListLeads(ctx context.Context, queryID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, query_id, officer, email, title, source, created_at FROM leads
		 WHERE query_id = $1 ORDER BY created_at`,
		queryID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list leads for query %s", queryID)
	}
	defer rows.Close()

	var out []model.Lead
	for rows.Next() {
		var (
			l           model.Lead
			officerJSON []byte
		)
		if err := rows.Scan(&l.ID, &l.QueryID, &officerJSON, &l.Email, &l.Title, &l.Source, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		if err := json.Unmarshal(officerJSON, &l.Officer); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal officer")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func scanPgQuery(row pgx.Row) (*model.Query, error) {
	var (
		q         model.Query
		codesJSON []byte
		status    string
	)
	if err := row.Scan(&q.ID, &codesJSON, &status, &q.Error, &q.CreatedAt, &q.FinishedAt); err != nil {
		return nil, err
	}
	q.Status = model.QueryStatus(status)
	if err := json.Unmarshal(codesJSON, &q.SicCodes); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal sic codes")
	}
	return &q, nil
}
