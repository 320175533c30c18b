package core

import (
	"fmt"
	"math"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
)

// TimeOfDay is a wall-clock hour and minute.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time of day %q: %w", s, model.ErrInvalidInput)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Policy holds the day-partitioning and late-classification rules.
type Policy struct {
	Location  *time.Location
	LateAfter TimeOfDay
}

// DefaultPolicy partitions days in UTC and marks check-ins after 09:30 as late.
func DefaultPolicy() Policy {
	return Policy{Location: time.UTC, LateAfter: TimeOfDay{Hour: 9, Minute: 30}}
}

// NewPolicy builds a Policy from an IANA timezone name and an "HH:MM" threshold.
func NewPolicy(timezone, lateAfter string) (Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Policy{}, fmt.Errorf("timezone %q: %w", timezone, err)
	}
	threshold, err := ParseTimeOfDay(lateAfter)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Location: loc, LateAfter: threshold}, nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// DateOf returns the local calendar date of t.
func (p Policy) DateOf(t time.Time) string {
	return t.In(p.location()).Format(model.DateLayout)
}

// IsLate reports whether the local hour and minute of checkIn are strictly after
// the threshold. Seconds are ignored, so 09:30:59 is on time with a 09:30 threshold.
func (p Policy) IsLate(checkIn time.Time) bool {
	local := checkIn.In(p.location())
	if local.Hour() != p.LateAfter.Hour {
		return local.Hour() > p.LateAfter.Hour
	}
	return local.Minute() > p.LateAfter.Minute
}

// StatusAtCheckOut is the status a record takes when it is checked out.
func (p Policy) StatusAtCheckOut(rec *model.AttendanceRecord) model.AttendanceStatus {
	if rec.CheckInTime != nil && p.IsLate(*rec.CheckInTime) {
		return model.StatusLate
	}
	if rec.Status == "" {
		return model.StatusPresent
	}
	return rec.Status
}

// ParseDate parses a "YYYY-MM-DD" date in the policy location.
func (p Policy) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, s, p.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, model.ErrInvalidDate)
	}
	return t, nil
}

// MonthRange maps "YYYY-MM" to the inclusive range of its days.
func (p Policy) MonthRange(month string) (*repository.DateRange, error) {
	first, err := time.ParseInLocation(model.MonthLayout, month, p.location())
	if err != nil {
		return nil, fmt.Errorf("%q: %w", month, model.ErrInvalidMonth)
	}
	return &repository.DateRange{From: first, To: first.AddDate(0, 1, -1)}, nil
}

// RoundHours converts d to hours rounded to two decimals.
func RoundHours(d time.Duration) float64 {
	return roundTo2(d.Hours())
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
