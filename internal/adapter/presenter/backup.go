package presenter

import (
	"io"
	"strconv"
)

// RecordCount is the number of backup records of one type.
type RecordCount struct {
	Type string
	Rows int
}

// RenderRecordCounts writes a per-type summary of a backup run.
func RenderRecordCounts(w io.Writer, counts []RecordCount) {
	table := newTable(w, "Records", "Rows")
	table.SetColumnAlignment([]int{0, 2})
	total := 0
	for _, c := range counts {
		table.Append([]string{c.Type, strconv.Itoa(c.Rows)})
		total += c.Rows
	}
	table.SetFooter([]string{"total", strconv.Itoa(total)})
	table.Render()
}
