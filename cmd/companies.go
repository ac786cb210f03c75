package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/pkg/companieshouse"
)

var (
	companiesSic    []string
	companiesPage   int
	companiesMax    int
	companiesFormat string
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Search active Companies House registrations by SIC code",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("registry"); err != nil {
			return err
		}

		maxResults := companiesMax
		if maxResults <= 0 {
			maxResults = cfg.CompaniesHouse.MaxResults
		}

		res, err := initRegistry(cfg).SearchCompanies(cmd.Context(), companieshouse.SearchParams{
			SicCodes:   companiesSic,
			Page:       companiesPage,
			MaxResults: maxResults,
		})
		if err != nil {
			return err
		}
		return writeValue(os.Stdout, companiesFormat, res)
	},
}

var officersFormat string

var officersCmd = &cobra.Command{
	Use:   "officers <company-number>",
	Short: "List the active directors and secretaries of a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("registry"); err != nil {
			return err
		}

		res, err := initRegistry(cfg).Officers(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeValue(os.Stdout, officersFormat, res)
	},
}

func init() {
	companiesCmd.Flags().StringSliceVar(&companiesSic, "sic", nil, "SIC codes to search (comma separated)")
	companiesCmd.Flags().IntVar(&companiesPage, "page", 0, "result page (zero based)")
	companiesCmd.Flags().IntVar(&companiesMax, "max", 0, "maximum companies to return (default from config)")
	companiesCmd.Flags().StringVar(&companiesFormat, "format", "json", "output format: json or yaml")
	_ = companiesCmd.MarkFlagRequired("sic")

	officersCmd.Flags().StringVar(&officersFormat, "format", "json", "output format: json or yaml")

	rootCmd.AddCommand(companiesCmd, officersCmd)
}
