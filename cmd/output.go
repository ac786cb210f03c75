package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leads-cli/internal/leads"
	"github.com/sells-group/leads-cli/internal/model"
)

// writeValue renders v as indented JSON or YAML.
func writeValue(out io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

// writeLeads writes leads in format to path, or to out when path is empty.
// xlsx requires a path.
func writeLeads(out io.Writer, format, path string, report *leads.Report) error {
	format = strings.ToLower(format)
	if format == "xlsx" {
		if path == "" {
			return eris.New("xlsx output requires --output")
		}
		return leads.WriteXLSX(path, report.Leads)
	}

	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}

	if format == "csv" {
		return leads.WriteCSV(out, report.Leads)
	}
	return writeValue(out, format, report)
}

func formatQueries(out io.Writer, queries []model.Query) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSIC CODES\tSTATUS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t-------\t--------")

	for _, q := range queries {
		dur := ""
		if q.FinishedAt != nil {
			dur = q.FinishedAt.Sub(q.CreatedAt).Round(time.Second).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			q.ID,
			strings.Join(q.SicCodes, ","),
			q.Status,
			q.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}
