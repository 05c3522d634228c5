package export

// Table is one titled grid in a report. Rows are expected to have len(Headers) cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
