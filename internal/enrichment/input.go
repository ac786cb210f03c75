package enrichment

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var columnAliases = map[string]string{
	"first_name":        "first_name",
	"firstname":         "first_name",
	"last_name":         "last_name",
	"lastname":          "last_name",
	"surname":           "last_name",
	"organization_name": "organization_name",
	"organisation_name": "organization_name",
	"company_name":      "organization_name",
	"company":           "organization_name",
}

// ReadPersonsCSV reads people from a CSV with a header row. Columns are
// matched case-insensitively; spaces and underscores are interchangeable.
// first_name and last_name columns are required, organization_name is
// optional. Rows are returned as read, without validation.
func ReadPersonsCSV(r io.Reader) ([]Person, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "enrichment: read csv header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var persons []Person
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "enrichment: read csv row")
		}
		persons = append(persons, cols.person(rec))
	}
	return persons, nil
}

// ReadPersonsXLSX reads people from the first sheet of a workbook, using the
// same header rules as ReadPersonsCSV.
func ReadPersonsXLSX(path string) ([]Person, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "enrichment: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("enrichment: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	cols, err := mapColumns(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	persons := make([]Person, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rec := rowToStrings(row)
		if isBlank(rec) {
			continue
		}
		persons = append(persons, cols.person(rec))
	}
	return persons, nil
}

type columns map[string]int

func mapColumns(header []string) (columns, error) {
	cols := columns{}
	for i, h := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		name = strings.TrimPrefix(name, "\ufeff")
		if canon, ok := columnAliases[name]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	for _, req := range []string{"first_name", "last_name"} {
		if _, ok := cols[req]; !ok {
			return nil, eris.Errorf("enrichment: input is missing %q column", req)
		}
	}
	return cols, nil
}

func (c columns) field(rec []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (c columns) person(rec []string) Person {
	return Person{
		FirstName:        c.field(rec, "first_name"),
		LastName:         c.field(rec, "last_name"),
		OrganizationName: c.field(rec, "organization_name"),
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
