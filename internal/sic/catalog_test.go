package sic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Greater(t, c.Len(), 100)
	sc, ok := c.Lookup("62012")
	require.True(t, ok)
	assert.Equal(t, "Business and domestic software development", sc.Description)

	sc, ok = c.Lookup("1110")
	require.True(t, ok)
	assert.Equal(t, "01110", sc.Code)
}

func TestLoadCatalog(t *testing.T) {
	in := "SIC Code,Description\n1110,Growing of cereals\n62012,\"Software, business\"\n62012,Duplicate\n,Blank\n"

	c, err := LoadCatalog(strings.NewReader(in))

	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "01110: Growing of cereals\n62012: Software, business", c.Context())
}

func TestLoadCatalog_MissingColumns(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("Code,Name\n1,a\n"))
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("SIC Code,Description\n69201,Accounting\n"), 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	c, err = LoadCatalogFile("")
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 1)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"":        "",
		" 1110 ":  "01110",
		"62012":   "62012",
		"7":       "00007",
		"abc":     "abc",
		"123456":  "123456",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeCode(in), in)
	}
}
