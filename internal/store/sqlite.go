package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS queries (
	id          TEXT PRIMARY KEY,
	sic_codes   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	query_id   TEXT NOT NULL REFERENCES queries(id),
	officer    TEXT NOT NULL,
	email      TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT 'apollo',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_query_id ON leads(query_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateQuery(ctx context.Context, sicCodes []string) (*model.Query, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	codesJSON, err := json.Marshal(sicCodes)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal sic codes")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO queries (id, sic_codes, status, created_at) VALUES (?, ?, ?, ?)`,
		id, string(codesJSON), string(model.QueryStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert query")
	}

	return &model.Query{
		ID:        id,
		SicCodes:  sicCodes,
		Status:    model.QueryStatusRunning,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) FinishQuery(ctx context.Context, id string, status model.QueryStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE queries SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish query %s", id)
	}
	return checkRowsAffected(res, "query", id)
}

func (s *SQLiteStore) GetQuery(ctx context.Context, id string) (*model.Query, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries WHERE id = ?`,
		id,
	)
	return scanQuery(row)
}

func (s *SQLiteStore) ListQueries(ctx context.Context, limit int) ([]model.Query, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries
		 ORDER BY created_at DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list queries")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list queries iterate")
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead *model.Lead) error {
	prepareLead(lead)

	officerJSON, err := json.Marshal(lead.Officer)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal officer")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leads (id, query_id, officer, email, title, source, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.QueryID, string(officerJSON), lead.Email, lead.Title, lead.Source, lead.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert lead for query %s", lead.QueryID)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, queryID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query_id, officer, email, title, source, created_at FROM leads
		 WHERE query_id = ? ORDER BY created_at, rowid`,
		queryID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list leads for query %s", queryID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Lead
	for rows.Next() {
		var (
			l           model.Lead
			officerJSON string
		)
		if err := rows.Scan(&l.ID, &l.QueryID, &officerJSON, &l.Email, &l.Title, &l.Source, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		if err := json.Unmarshal([]byte(officerJSON), &l.Officer); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal officer")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanQuery(row scannable) (*model.Query, error) {
	var (
		q         model.Query
		codesJSON string
		finished  sql.NullTime
	)
	err := row.Scan(&q.ID, &codesJSON, &q.Status, &q.Error, &q.CreatedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan query")
	}

	if err := json.Unmarshal([]byte(codesJSON), &q.SicCodes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal sic codes")
	}
	if finished.Valid {
		t := finished.Time
		q.FinishedAt = &t
	}
	return &q, nil
}

func prepareLead(lead *model.Lead) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if lead.Source == "" {
		lead.Source = "apollo"
	}
}
