// Package report serializes tabular exports as CSV, JSON or a standalone HTML page.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Format is an export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat maps a query value to a Format; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Table is a rendered-ready export
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// AddRow appends one row; it must have one cell per column
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// FileName builds "<entity>-<yyyymmdd>.<ext>"
func FileName(entity string, f Format, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", entity, now.Format("20060102"), f)
}

// Render serializes the table in the requested format
func Render(f Format, t *Table) ([]byte, error) {
	switch f {
	case FormatCSV:
		return renderCSV(t)
	case FormatJSON:
		return renderJSON(t)
	case FormatHTML:
		return renderHTML(t)
	}
	return nil, ErrUnsupportedFormat
}

func renderCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderJSON emits an array of objects keyed by column name, in column order
func renderJSON(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range t.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(col)
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			v, _ := json.Marshal(cell)
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 8px; font-size: 13px; text-align: left; }
th { background: #f3f4f6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{len .Rows}} records</p>
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

func renderHTML(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlPage.Execute(&buf, t); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.Bytes(), nil
}
