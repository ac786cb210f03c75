package leads

import (
	"bufio"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/auditlog"
	"github.com/sells-group/leads-cli/internal/model"
)

// ExportHeader is the column set of lead exports.
var ExportHeader = []string{
	"Company Name",
	"Company Number",
	"Officer First Name",
	"Officer Last Name",
	"Role",
	"Appointed On",
	"Email",
	"Occupation",
	"Nationality",
	"Country of Residence",
}

func exportRow(l model.Lead) []string {
	o := l.Officer
	return []string{
		o.CompanyName,
		o.CompanyNumber,
		o.FirstName,
		o.LastName,
		o.Role,
		o.AppointedOn,
		l.Email,
		o.Occupation,
		o.Nationality,
		o.CountryOfResidence,
	}
}

// WriteCSV writes leads as CSV with the same field escaping as the audit log.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(auditlog.FormatLine(ExportHeader)); err != nil {
		return eris.Wrap(err, "leads: write csv header")
	}
	for _, l := range leads {
		if _, err := bw.WriteString(auditlog.FormatLine(exportRow(l))); err != nil {
			return eris.Wrap(err, "leads: write csv row")
		}
	}
	return eris.Wrap(bw.Flush(), "leads: flush csv")
}

// WriteXLSX saves leads as a single-sheet workbook at path.
func WriteXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "leads: add sheet")
	}

	addRow(sheet, ExportHeader)
	for _, l := range leads {
		addRow(sheet, exportRow(l))
	}

	return eris.Wrapf(f.Save(path), "leads: save %s", path)
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
