// Package export serializes record sequences as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row is any record that can describe itself as a flat row.
type Row interface {
	Fields() []string
	Values() []string
}

// CSV writes rows with a header taken from the first row's field names.
// An empty sequence produces no output at all, not even a header.
func CSV[R Row](w io.Writer, rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)

	records := make([][]string, 0, len(rows)+1)
	records = append(records, rows[0].Fields())
	for _, r := range rows {
		records = append(records, r.Values())
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

// Filename is the download name of a domain export.
func Filename(domain string) string {
	return domain + ".csv"
}
