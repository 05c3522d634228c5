package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersTablesInOrder(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render([]Table{
		{Title: "1-1", Headers: []string{"period", "mon"}, Rows: [][]string{{"1", "science"}}},
		{Title: "1-2", Headers: []string{"period", "mon"}, Rows: [][]string{{"1"}}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	reader := csv.NewReader(bytes.NewReader(out[len(utf8BOM):]))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"1-1"}, records[0])
	assert.Equal(t, []string{"period", "mon"}, records[1])
	assert.Equal(t, []string{"1", "science"}, records[2])
	assert.Equal(t, []string{"1-2"}, records[3])
	assert.Equal(t, []string{"1", ""}, records[5])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render([]Table{{Title: "empty"}})
	require.Error(t, err)

	_, err = NewCSVExporter().Render(nil)
	require.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	out, err := NewPDFExporter("").Render("Timetable", []Table{
		{Title: "1-1", Headers: []string{"period", "mon"}, Rows: [][]string{{"1", "science"}}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
