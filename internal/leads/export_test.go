package leads

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

func sampleLeads() []model.Lead {
	return []model.Lead{
		{
			Officer: model.Officer{
				FirstName:          "Jane",
				LastName:           "Doe",
				Role:               "director",
				AppointedOn:        "2020-01-01",
				Occupation:         "Engineer",
				Nationality:        "British",
				CountryOfResidence: "United Kingdom",
				CompanyName:        "ACME, LTD",
				CompanyNumber:      "01234567",
			},
			Email: "jane@acme.com",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLeads()))

	assert.Equal(t,
		"Company Name,Company Number,Officer First Name,Officer Last Name,Role,Appointed On,Email,Occupation,Nationality,Country of Residence\n"+
			"\"ACME, LTD\",01234567,Jane,Doe,director,2020-01-01,jane@acme.com,Engineer,British,United Kingdom\n",
		buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, WriteXLSX(path, sampleLeads()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Company Name", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "ACME, LTD", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "jane@acme.com", sheet.Rows[1].Cells[6].String())
}
