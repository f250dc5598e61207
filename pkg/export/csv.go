package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders tables as RFC 4180 CSV.
type CSV struct{}

// NewCSV builds a CSV renderer.
func NewCSV() *CSV {
	return &CSV{}
}

// Extension returns the file extension without a dot.
func (e *CSV) Extension() string {
	return "csv"
}

// Render produces CSV encoded bytes for the table. The title is not
// included; CSV consumers want clean columns.
func (e *CSV) Render(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Headers))
		copy(record, row)
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
