// Package auditlog appends one row per enrichment attempt to a CSV file.
package auditlog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Header is the fixed first line of every audit file.
var Header = []string{"Company Name", "First Name", "Last Name", "Email", "Error"}

// Row is one enrichment attempt.
type Row struct {
	CompanyName string
	FirstName   string
	LastName    string
	Email       string
	Error       string
}

func (r Row) fields() []string {
	return []string{r.CompanyName, r.FirstName, r.LastName, r.Email, r.Error}
}

// Logger writes audit rows. Write failures are reported on the zap logger and
// never returned to the caller.
type Logger struct {
	log *zap.Logger
}

// New returns a Logger that reports write failures on log. A nil log uses
// the global zap logger.
func New(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.L()
	}
	return &Logger{log: log}
}

// Append writes row to the CSV file at path, creating the parent directory
// and the header line on first use.
func (l *Logger) Append(path string, row Row) {
	if err := appendRow(path, row); err != nil {
		l.log.Error("auditlog: write row",
			zap.String("path", path),
			zap.String("first_name", row.FirstName),
			zap.String("last_name", row.LastName),
			zap.Error(err),
		)
	}
}

func appendRow(path string, row Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "auditlog: create directory")
	}

	exists := true
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		exists = false
	} else if err != nil {
		return eris.Wrap(err, "auditlog: stat file")
	}

	var b strings.Builder
	if !exists {
		b.WriteString(FormatLine(Header))
	}
	b.WriteString(FormatLine(row.fields()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "auditlog: open file")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "auditlog: write")
	}
	return eris.Wrap(f.Close(), "auditlog: close")
}

// FormatLine joins escaped fields with commas and terminates the line.
func FormatLine(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}
	return strings.Join(escaped, ",") + "\n"
}

// EscapeField quotes a field containing a comma, double quote or newline,
// doubling any inner quotes. Other values are returned unchanged.
func EscapeField(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
