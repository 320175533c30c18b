// Package export serializes attendance export rows.
package export

import (
	"fmt"
	"strconv"

	"attendance.service/internal/core/model"
)

// Header is the column row shared by every format.
var Header = []string{
	"Employee ID", "Name", "Email", "Department", "Date", "Check In", "Check Out", "Status", "Total Hours",
}

// Format is a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("export format %q: %w", s, model.ErrInvalidInput)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func (f Format) Filename() string {
	return "attendance." + string(f)
}

func fields(r model.ExportRow) []string {
	return []string{
		r.EmployeeID,
		r.Name,
		r.Email,
		r.Department,
		r.Date,
		r.CheckInTime,
		r.CheckOutTime,
		r.Status,
		strconv.FormatFloat(r.TotalHours, 'f', -1, 64),
	}
}
