package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/monitoring"
)

var queriesLimit int

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List recorded discovery queries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		queries, err := st.ListQueries(ctx, queriesLimit)
		if err != nil {
			return eris.Wrap(err, "queries list")
		}
		if len(queries) == 0 {
			fmt.Fprintln(os.Stderr, "No queries found.")
			return nil
		}

		formatQueries(os.Stdout, queries)
		return nil
	},
}

var queryLeadsFormat string

var queryLeadsCmd = &cobra.Command{
	Use:   "leads <query-id>",
	Short: "Show the leads found by a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		q, err := st.GetQuery(ctx, args[0])
		if err != nil {
			return err
		}
		found, err := st.ListLeads(ctx, q.ID)
		if err != nil {
			return eris.Wrap(err, "queries leads")
		}
		return writeValue(os.Stdout, queryLeadsFormat, map[string]any{
			"query": q,
			"leads": found,
		})
	},
}

var (
	statsLookback int
	statsFormat   string
)

var queryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent queries and leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := monitoring.NewCollector(st).Collect(ctx, statsLookback)
		if err != nil {
			return err
		}
		return writeValue(os.Stdout, statsFormat, snap)
	},
}

func init() {
	queriesCmd.Flags().IntVar(&queriesLimit, "limit", 20, "maximum queries to list")
	queryLeadsCmd.Flags().StringVar(&queryLeadsFormat, "format", "json", "output format: json or yaml")
	queryStatsCmd.Flags().IntVar(&statsLookback, "lookback", 24, "hours to look back (0 for all)")
	queryStatsCmd.Flags().StringVar(&statsFormat, "format", "json", "output format: json or yaml")
	queriesCmd.AddCommand(queryLeadsCmd, queryStatsCmd)
	rootCmd.AddCommand(queriesCmd)
}
