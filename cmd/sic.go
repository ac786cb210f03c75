package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sicFormat string

var sicCmd = &cobra.Command{
	Use:   "sic <query>",
	Short: "Classify a free-text industry description into SIC codes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}
		ctx := cmd.Context()

		classifier, err := initClassifier(ctx, cfg)
		if err != nil {
			return err
		}

		codes, err := classifier.Classify(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return writeValue(os.Stdout, sicFormat, map[string]any{"results": codes})
	},
}

func init() {
	sicCmd.Flags().StringVar(&sicFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(sicCmd)
}
