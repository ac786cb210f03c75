package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/leads"
	"github.com/sells-group/leads-cli/internal/model"
)

func sampleReport() *leads.Report {
	return &leads.Report{
		SicCodes:  []string{"62012"},
		Companies: 1,
		Officers:  1,
		Leads: []model.Lead{{
			Officer: model.Officer{FirstName: "Jane", LastName: "Doe", Role: "director", CompanyName: "ACME LTD", CompanyNumber: "001"},
			Email:   "jane@acme.com",
		}},
	}
}

func TestWriteValue_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, "json", map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n":1}`, buf.String())
}

func TestWriteValue_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeValue(&buf, "yaml", map[string]int{"n": 1}))
	assert.Equal(t, "n: 1\n", buf.String())
}

func TestWriteValue_UnknownFormat(t *testing.T) {
	err := writeValue(&bytes.Buffer{}, "toml", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestWriteLeads_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLeads(&buf, "csv", "", sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Company Name,Company Number"))
	assert.Contains(t, lines[1], "jane@acme.com")
}

func TestWriteLeads_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.json")
	require.NoError(t, writeLeads(&bytes.Buffer{}, "json", path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"email": "jane@acme.com"`)
}

func TestWriteLeads_XLSXRequiresPath(t *testing.T) {
	err := writeLeads(&bytes.Buffer{}, "xlsx", "", sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestWriteLeads_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, writeLeads(&bytes.Buffer{}, "xlsx", path, sampleReport()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFormatQueries(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	finished := created.Add(90 * time.Second)

	var buf bytes.Buffer
	formatQueries(&buf, []model.Query{
		{ID: "q-1", SicCodes: []string{"62012", "62020"}, Status: model.QueryStatusComplete, CreatedAt: created, FinishedAt: &finished},
		{ID: "q-2", SicCodes: []string{"47110"}, Status: model.QueryStatusRunning, CreatedAt: created},
	})

	out := buf.String()
	assert.Contains(t, out, "SIC CODES")
	assert.Contains(t, out, "62012,62020")
	assert.Contains(t, out, "2026-03-01 09:30")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "running")
}

func TestReadPersons(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("first_name,last_name,organization_name\nJane,Doe,Acme\n"), 0o644))

	persons, err := readPersons(path, "")
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "Acme", persons[0].OrganizationName)

	_, err = readPersons("", "")
	assert.Error(t, err)
	_, err = readPersons(path, "x.xlsx")
	assert.Error(t, err)
}
