// Package sic maps free-text business descriptions to UK SIC 2007 codes using
// an embedded code catalog and an LLM.
package sic

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

//go:embed sic_codes.csv
var embeddedCodes []byte

// Catalog is an ordered set of SIC codes with descriptions.
type Catalog struct {
	codes []model.SicCode
	index map[string]int
}

// DefaultCatalog parses the embedded UK SIC 2007 catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(embeddedCodes))
}

// LoadCatalogFile reads a catalog CSV from path. An empty path returns the
// embedded catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sic: open catalog %s", path)
	}
	defer f.Close() //nolint:errcheck
	return LoadCatalog(f)
}

// LoadCatalog reads a CSV with "SIC Code" and "Description" header columns.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "sic: read catalog header")
	}
	codeCol, descCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "sic code", "sic", "code":
			codeCol = i
		case "description":
			descCol = i
		}
	}
	if codeCol < 0 || descCol < 0 {
		return nil, eris.New("sic: catalog needs SIC Code and Description columns")
	}

	c := &Catalog{index: map[string]int{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "sic: read catalog row")
		}
		if codeCol >= len(rec) || descCol >= len(rec) {
			continue
		}
		code := NormalizeCode(rec[codeCol])
		if code == "" {
			continue
		}
		if _, dup := c.index[code]; dup {
			continue
		}
		c.index[code] = len(c.codes)
		c.codes = append(c.codes, model.SicCode{Code: code, Description: strings.TrimSpace(rec[descCol])})
	}
	return c, nil
}

// Len returns the number of codes.
func (c *Catalog) Len() int {
	return len(c.codes)
}

// Codes returns the catalog entries in file order.
func (c *Catalog) Codes() []model.SicCode {
	return append([]model.SicCode(nil), c.codes...)
}

// Lookup returns the entry for code, normalizing it first.
func (c *Catalog) Lookup(code string) (model.SicCode, bool) {
	i, ok := c.index[NormalizeCode(code)]
	if !ok {
		return model.SicCode{}, false
	}
	return c.codes[i], true
}

// Context renders the catalog as "code: description" lines for a prompt.
func (c *Catalog) Context() string {
	var b strings.Builder
	for i, sc := range c.codes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sc.Code)
		b.WriteString(": ")
		b.WriteString(sc.Description)
	}
	return b.String()
}

// NormalizeCode trims a SIC code and zero-pads it to five digits. Values that
// are not all digits are returned trimmed.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return code
		}
	}
	for len(code) < 5 {
		code = "0" + code
	}
	return code
}
