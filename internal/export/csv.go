package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"attendance.service/internal/core/model"
)

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []model.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(fields(r)); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
