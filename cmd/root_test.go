package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"sic", "companies", "officers", "enrich", "leads", "queries", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "leads-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestEnrichCommand_Flags(t *testing.T) {
	for _, name := range []string{"csv", "xlsx", "audit-log", "output", "format"} {
		require.NotNil(t, enrichCmd.Flags().Lookup(name), "enrich should have --%s", name)
	}
}

func TestLeadsCommand_Flags(t *testing.T) {
	for _, name := range []string{"query", "sic", "max", "page", "format", "output", "no-store"} {
		require.NotNil(t, leadsCmd.Flags().Lookup(name), "leads should have --%s", name)
	}
	assert.Equal(t, "json", leadsCmd.Flags().Lookup("format").DefValue)
}

func TestCompaniesCommand_Flags(t *testing.T) {
	flag := companiesCmd.Flags().Lookup("sic")
	require.NotNil(t, flag)
	assert.Equal(t, "0", companiesCmd.Flags().Lookup("page").DefValue)
}

func TestQueriesCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range queriesCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["leads"])
	assert.True(t, names["stats"])
	assert.Equal(t, "20", queriesCmd.Flags().Lookup("limit").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
