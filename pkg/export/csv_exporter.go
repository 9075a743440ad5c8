package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM lets spreadsheet tools open report files with accented activity
// names intact.
const utf8BOM = "\ufeff"

// CSVExporter writes report rows as a spreadsheet-friendly CSV file: a UTF-8
// byte order mark, one header line, then one line per row in header order.
// The report title is not written; it travels in the file name.
type CSVExporter struct {
	// Comma overrides the field separator. Zero means ','.
	Comma rune
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render returns the CSV file for a report.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the report to w. Columns a row lacks are left empty.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("report %q has no columns", data.Title)
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if e.Comma != 0 {
		writer.Comma = e.Comma
	}
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	line := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, column := range data.Headers {
			line[i] = row[column]
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
