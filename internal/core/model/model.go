package model

import (
	"time"
)

// DateLayout is the calendar date form used as the partition key of attendance records.
const DateLayout = "2006-01-02"

// MonthLayout is the "YYYY-MM" form accepted by monthly summaries.
const MonthLayout = "2006-01"

// AttendanceStatus classifies a day of attendance.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusLate    AttendanceStatus = "late"
	StatusAbsent  AttendanceStatus = "absent"
	StatusHalfDay AttendanceStatus = "half-day"
)

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDay:
		return true
	}
	return false
}

// Role gates access to team-wide operations.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// DeliveryStatus defines the state of a downstream delivery of a checkout event.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDING"
	DeliveryProcessing DeliveryStatus = "PROCESSING"
	DeliveryCompleted  DeliveryStatus = "COMPLETED"
	DeliveryFailed     DeliveryStatus = "FAILED"
)

// DeliveryChannel names a downstream consumer of checkout events.
type DeliveryChannel string

const (
	ChannelEmail  DeliveryChannel = "email"
	ChannelHRSync DeliveryChannel = "hrsync"
)

// AttendanceRecord is the single record of a user's attendance on one calendar day.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	Date         string           `json:"date"`
	CheckInTime  *time.Time       `json:"checkInTime"`
	CheckOutTime *time.Time       `json:"checkOutTime"`
	Status       AttendanceStatus `json:"status"`
	TotalHours   *float64         `json:"totalHours"`
}

// CheckedIn reports whether the record carries a check-in time.
func (r *AttendanceRecord) CheckedIn() bool {
	return r != nil && r.CheckInTime != nil
}

// CheckedOut reports whether the record carries a check-out time.
func (r *AttendanceRecord) CheckedOut() bool {
	return r != nil && r.CheckOutTime != nil
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	EmployeeID   string    `json:"employeeId"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserIdentity is the subset of a user joined onto attendance listings.
type UserIdentity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

// AttendanceWithUser is an attendance record joined with its owner.
type AttendanceWithUser struct {
	AttendanceRecord
	User UserIdentity `json:"user"`
}

// Delivery tracks the processing of one checkout event by one channel.
type Delivery struct {
	AttendanceID string          `json:"attendanceId"`
	Channel      DeliveryChannel `json:"channel"`
	Status       DeliveryStatus  `json:"status"`
	RetryCount   int             `json:"retryCount"`
}

// MonthlySummary tallies a user's records per status.
type MonthlySummary struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	HalfDay    int     `json:"halfDay"`
	TotalHours float64 `json:"totalHours"`
}

// TeamSummary aggregates attendance of the whole roster on one day.
// Absent is derived from the roster size and can go negative.
type TeamSummary struct {
	Date           string `json:"date"`
	TotalEmployees int    `json:"totalEmployees"`
	Present        int    `json:"present"`
	Absent         int    `json:"absent"`
	Late           int    `json:"late"`
}

type TrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
}

// ExportRow is the flattened shape of one exported record.
type ExportRow struct {
	EmployeeID   string  `json:"employeeId"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Department   string  `json:"department"`
	Date         string  `json:"date"`
	CheckInTime  string  `json:"checkInTime"`
	CheckOutTime string  `json:"checkOutTime"`
	Status       string  `json:"status"`
	TotalHours   float64 `json:"totalHours"`
}

// ListFilter narrows manager listings. Empty fields do not filter.
type ListFilter struct {
	Date       string
	EmployeeID string
	Status     AttendanceStatus
}

type EmployeeDashboard struct {
	TodayStatus string              `json:"todayStatus"`
	Today       *AttendanceRecord   `json:"today"`
	Present     int                 `json:"present"`
	Absent      int                 `json:"absent"`
	Late        int                 `json:"late"`
	HalfDay     int                 `json:"halfDay"`
	TotalHours  float64             `json:"totalHours"`
	Recent      []*AttendanceRecord `json:"recent"`
}

type ManagerDashboard struct {
	Date           string       `json:"date"`
	TotalEmployees int          `json:"totalEmployees"`
	Present        int          `json:"present"`
	Absent         int          `json:"absent"`
	Late           int          `json:"late"`
	Trend          []TrendPoint `json:"trend"`
}
