package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/leads"
)

var (
	leadsQuery   string
	leadsSic     []string
	leadsMax     int
	leadsPage    int
	leadsFormat  string
	leadsOutput  string
	leadsNoStore bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Discover and enrich officers of companies in an industry",
	Long:  "Resolves SIC codes (from --sic, or by classifying --query), searches active companies, lists their officers and enriches each unique officer with an email.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initLeads(ctx, !leadsNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		maxResults := leadsMax
		if maxResults <= 0 {
			maxResults = cfg.CompaniesHouse.MaxResults
		}

		report, err := env.Service.Discover(ctx, leads.Request{
			Query:      leadsQuery,
			SicCodes:   leadsSic,
			MaxResults: maxResults,
			Page:       leadsPage,
		})
		if err != nil {
			return err
		}

		zap.L().Info("leads complete",
			zap.Strings("sic_codes", report.SicCodes),
			zap.Int("companies", report.Companies),
			zap.Int("officers", report.Officers),
			zap.Int("leads", len(report.Leads)),
		)
		return writeLeads(os.Stdout, leadsFormat, leadsOutput, report)
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsQuery, "query", "", "free-text industry description to classify")
	leadsCmd.Flags().StringSliceVar(&leadsSic, "sic", nil, "SIC codes (skips classification)")
	leadsCmd.Flags().IntVar(&leadsMax, "max", 0, "maximum companies to search (default from config)")
	leadsCmd.Flags().IntVar(&leadsPage, "page", 0, "result page (zero based)")
	leadsCmd.Flags().StringVar(&leadsFormat, "format", "json", "output format: json, yaml, csv or xlsx")
	leadsCmd.Flags().StringVar(&leadsOutput, "output", "", "write to this file instead of stdout")
	leadsCmd.Flags().BoolVar(&leadsNoStore, "no-store", false, "do not record the query and leads in the store")
	leadsCmd.MarkFlagsOneRequired("query", "sic")
	rootCmd.AddCommand(leadsCmd)
}
