package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders tables as RFC 4180 CSV.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv" }
func (CSV) Extension() string   { return "csv" }

// Render writes the header row followed by every data row.
func (CSV) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
