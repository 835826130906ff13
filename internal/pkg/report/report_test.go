package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := &Table{Title: "Applications", Columns: []string{"Student", "Status"}}
	t.AddRow("Rahul, Verma", "approved")
	t.AddRow("<b>Asha</b>", "pending")
	return t
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("HTML")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderCSVQuotesCells(t *testing.T) {
	out, err := Render(FormatCSV, sampleTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,Status", lines[0])
	assert.Equal(t, `"Rahul, Verma",approved`, lines[1])
}

func TestRenderJSONKeepsColumns(t *testing.T) {
	out, err := Render(FormatJSON, sampleTable())
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "pending", rows[1]["Status"])
	assert.True(t, strings.HasPrefix(string(out), `[{"Student":`))
}

func TestRenderHTMLEscapes(t *testing.T) {
	out, err := Render(FormatHTML, sampleTable())
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;b&gt;Asha&lt;/b&gt;")
	assert.Contains(t, string(out), "2 records")
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "payments-20250309.csv", FileName("payments", FormatCSV, now))
}
