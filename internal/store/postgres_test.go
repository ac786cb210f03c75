package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS queries`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateQuery(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO queries`).
		WithArgs(pgxmock.AnyArg(), []byte(`["62012"]`), "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	q, err := s.CreateQuery(context.Background(), []string{"62012"})
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, model.QueryStatusRunning, q.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishQuery_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE queries SET status = \$1`).
		WithArgs("complete", "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FinishQuery(context.Background(), "missing", model.QueryStatusComplete, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetQuery(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := created.Add(time.Minute)

	mock.ExpectQuery(`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries WHERE id = \$1`).
		WithArgs("q1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "sic_codes", "status", "error", "created_at", "finished_at"}).
			AddRow("q1", []byte(`["62012","62020"]`), "complete", "", created, &finished))

	q, err := s.GetQuery(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"62012", "62020"}, q.SicCodes)
	assert.Equal(t, model.QueryStatusComplete, q.Status)
	require.NotNil(t, q.FinishedAt)
	assert.Equal(t, finished, *q.FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetQuery_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetQuery(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "q1", pgxmock.AnyArg(), "jane@acme.com", "", "apollo", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	lead := &model.Lead{QueryID: "q1", Officer: model.Officer{FirstName: "Jane", LastName: "Doe"}, Email: "jane@acme.com"}
	require.NoError(t, s.SaveLead(context.Background(), lead))
	assert.NotEmpty(t, lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, query_id, officer, email, title, source, created_at FROM leads`).
		WithArgs("q1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "query_id", "officer", "email", "title", "source", "created_at"}).
			AddRow("l1", "q1", []byte(`{"first_name":"Jane","last_name":"Doe","company_name":"ACME LTD"}`), "jane@acme.com", "CEO", "apollo", now))

	leads, err := s.ListLeads(context.Background(), "q1")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "ACME LTD", leads[0].Officer.CompanyName)
	assert.Equal(t, "CEO", leads[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListQueries_DefaultLimit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, sic_codes, status, error, created_at, finished_at FROM queries`).
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "sic_codes", "status", "error", "created_at", "finished_at"}))

	qs, err := s.ListQueries(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, qs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
