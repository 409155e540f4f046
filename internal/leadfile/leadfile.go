// Package leadfile loads lead records from local CSV or XLSX exports, as an
// offline alternative to the remote backend. Files use the same column names
// as the wire format; "customer_name" is accepted as a legacy alias for
// "company_name".
package leadfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/model"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// Load reads leads from path, dispatching on the file extension
// (.csv or .xlsx).
func Load(path string) ([]model.Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: open csv")
		}
		defer f.Close() //nolint:errcheck
		return FromCSV(f)
	case ".xlsx":
		return FromXLSX(path)
	default:
		return nil, eris.Errorf("leadfile: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// FromCSV parses leads from CSV data. The first row must be a header.
func FromCSV(r io.Reader) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: read csv header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: read csv row")
		}
		rows = append(rows, record)
	}

	return fromRows(header, rows), nil
}

// FromXLSX parses leads from the first sheet of an XLSX workbook. The first
// row must be a header.
func FromXLSX(path string) ([]model.Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("leadfile: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	var header []string
	var rows [][]string
	for i, row := range sheet.Rows {
		var cells []string
		for _, c := range row.Cells {
			cells = append(cells, c.String())
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	return fromRows(header, rows), nil
}

// fromRows maps header-indexed rows onto normalized leads. Rows without a
// company name are skipped; unparseable numeric cells default to absent.
func fromRows(header []string, rows [][]string) []model.Lead {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	// Legacy export alias.
	if _, ok := idx["company_name"]; !ok {
		if i, ok := idx["customer_name"]; ok {
			idx["company_name"] = i
		}
	}

	cell := func(row []string, key string) string {
		i, ok := idx[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var leads []model.Lead
	skipped := 0
	for _, row := range rows {
		name := cell(row, "company_name")
		if name == "" {
			skipped++
			continue
		}

		wire := salesapi.Lead{
			CompanyName:           name,
			QuoteValue:            parseFloat(cell(row, "quote_value")),
			ItemCount:             parseInt(cell(row, "item_count")),
			ConversionDays:        parseInt(cell(row, "conversion_days")),
			LeadScore:             parseOptFloat(cell(row, "lead_score")),
			ConversionProbability: parseOptFloat(cell(row, "conversion_probability")),
			Industry:              cell(row, "industry"),
			Segment:               cell(row, "segment"),
			MaturityLevel:         cell(row, "maturity_level"),
		}
		leads = append(leads, model.FromAPI(wire))
	}

	if skipped > 0 {
		zap.L().Warn("leadfile: skipped rows without a company name",
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(leads)),
		)
	}
	return leads
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// Tolerate floats in integer columns ("5.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
