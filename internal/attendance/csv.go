package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the reconciled view as CSV. It projects the same records
// the live view shows, so both surfaces always agree on status and alerts.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Roll", "Name", "Status", "Method", "Alert"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Roll, rec.Name, rec.Status, rec.Method, rec.Alert}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", rec.Roll, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
