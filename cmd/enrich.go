package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/enrichment"
)

var (
	enrichCSV      string
	enrichXLSX     string
	enrichAuditLog string
	enrichOutput   string
	enrichFormat   string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Bulk-enrich people with emails from a CSV or XLSX file",
	Long:  "Reads first_name, last_name and organization_name columns, removes duplicates, and looks each person up in Apollo in rate-limited batches. Only matches with an email are written out.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		persons, err := readPersons(enrichCSV, enrichXLSX)
		if err != nil {
			return err
		}

		if enrichAuditLog != "" {
			cfg.Enrichment.AuditLogPath = enrichAuditLog
		}
		limiter := enrichment.NewSharedLimiter(cfg.Enrichment.RequestsPerMinute)
		pipeline := initPipeline(cfg, limiter)

		results, err := pipeline.EnrichBulk(cmd.Context(), persons)
		if err != nil {
			return err
		}
		zap.L().Info("enrich complete",
			zap.Int("input", len(persons)),
			zap.Int("matched", len(results)),
		)

		var out io.Writer = os.Stdout
		if enrichOutput != "" {
			f, err := os.Create(enrichOutput)
			if err != nil {
				return eris.Wrapf(err, "create %s", enrichOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return writeValue(out, enrichFormat, results)
	},
}

func readPersons(csvPath, xlsxPath string) ([]enrichment.Person, error) {
	switch {
	case csvPath != "" && xlsxPath != "":
		return nil, eris.New("use either --csv or --xlsx, not both")
	case xlsxPath != "":
		return enrichment.ReadPersonsXLSX(xlsxPath)
	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", csvPath)
		}
		defer f.Close() //nolint:errcheck
		return enrichment.ReadPersonsCSV(f)
	default:
		return nil, eris.New("--csv or --xlsx is required")
	}
}

func init() {
	enrichCmd.Flags().StringVar(&enrichCSV, "csv", "", "input CSV file")
	enrichCmd.Flags().StringVar(&enrichXLSX, "xlsx", "", "input XLSX file (first sheet)")
	enrichCmd.Flags().StringVar(&enrichAuditLog, "audit-log", "", "CSV audit log path (default from config)")
	enrichCmd.Flags().StringVar(&enrichOutput, "output", "", "write results to this file instead of stdout")
	enrichCmd.Flags().StringVar(&enrichFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(enrichCmd)
}
