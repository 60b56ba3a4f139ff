package core

// report.go renders upload templates and job error rows back to downloadable
// documents.

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// escapeCell escapes one cell for CSV output. Cells containing a comma,
// double quote, or line break are wrapped in double quotes with internal
// quotes doubled; everything else passes through unchanged. Paired with
// Tokenize this round-trips arbitrary cell values.
func escapeCell(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCell(cell))
	}
	b.WriteByte('\n')
}

// Template renders the header row and one illustrative sample row for an
// upload type.
func Template(t UploadType) (string, error) {
	sch, ok := SchemaFor(t)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	var b strings.Builder
	writeCSVRow(&b, sch.Columns())
	writeCSVRow(&b, sch.Sample)
	return b.String(), nil
}

// TemplateXLSX renders the same template as an Excel workbook.
func TemplateXLSX(t UploadType) ([]byte, error) {
	sch, ok := SchemaFor(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(sch.Columns()))
	for i, col := range sch.Columns() {
		header[i] = col
	}
	sample := make([]any, len(sch.Sample))
	for i, cell := range sch.Sample {
		sample[i] = cell
	}

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("template sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &sample); err != nil {
		return nil, fmt.Errorf("template sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ErrorsCSV renders a job's error rows as CSV text. Returns "" when the job
// has no errors, which the HTTP layer surfaces as 204 No Content. Each row
// carries its physical line number, the concatenated messages, and the
// original cell values keyed by the uploaded columns; missing cells render
// as empty strings.
func ErrorsCSV(job Job) string {
	if len(job.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	header := append([]string{"rowNumber", "messages"}, job.Columns...)
	writeCSVRow(&b, header)

	for _, row := range job.Errors {
		cells := make([]string, 0, len(header))
		cells = append(cells, strconv.Itoa(row.LineNumber), strings.Join(row.Messages, "; "))
		for _, col := range job.Columns {
			cells = append(cells, row.Raw[col])
		}
		writeCSVRow(&b, cells)
	}
	return b.String()
}
