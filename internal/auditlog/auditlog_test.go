package auditlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEscapeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"Acme, Ltd", `"Acme, Ltd"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line1\nline2", "\"line1\nline2\""},
		{" leading space", " leading space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeField(tt.in), "input %q", tt.in)
	}
}

func TestAppend_CreatesDirectoryAndHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "audit.csv")

	New(zap.NewNop()).Append(path, Row{CompanyName: "Acme", FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Company Name,First Name,Last Name,Email,Error\nAcme,Jane,Doe,jane@acme.com,\n", string(data))
}

func TestAppend_AppendsWithoutRepeatingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l := New(zap.NewNop())

	l.Append(path, Row{FirstName: "A", LastName: "One"})
	l.Append(path, Row{FirstName: "B", LastName: "Two", Error: "API error: 429"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Company Name,First Name,Last Name,Email,Error", lines[0])
	assert.Equal(t, ",B,Two,,API error: 429", lines[2])
}

func TestAppend_RoundTripsSpecialCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	l := New(zap.NewNop())

	rows := []Row{
		{CompanyName: "Smith, Jones & Co", FirstName: "Ann", LastName: "O'Neil", Email: "ann@sj.co.uk"},
		{CompanyName: `The "Best" Ltd`, FirstName: "Bob", LastName: "Lee", Error: "boom,\nsecond line"},
		{CompanyName: "", FirstName: "Cy", LastName: "Young"},
	}
	for _, r := range rows {
		l.Append(path, r)
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)
	assert.Equal(t, Header, records[0])
	for i, r := range rows {
		assert.Equal(t, r.fields(), records[i+1])
	}
}

func TestAppend_FailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	dir := t.TempDir()

	// A regular file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	New(zap.New(core)).Append(filepath.Join(blocker, "audit.csv"), Row{FirstName: "Jane", LastName: "Doe"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "auditlog: write row", entry.Message)
	assert.Equal(t, "Jane", entry.ContextMap()["first_name"])
}

func TestNew_NilLoggerUsesGlobal(t *testing.T) {
	assert.NotNil(t, New(nil).log)
}
