package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Ledger owns the per-day attendance record lifecycle and the queries over it.
type Ledger struct {
	records   repository.AttendanceRepository
	users     repository.UserRepository
	publisher messaging.EventPublisher
	policy    Policy
	clock     Clock
}

// NewLedger wires the ledger to its stores and the checkout event publisher.
// A nil publisher drops events and a nil clock uses the system clock.
func NewLedger(records repository.AttendanceRepository, users repository.UserRepository, publisher messaging.EventPublisher, policy Policy, clock Clock) *Ledger {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Ledger{
		records:   records,
		users:     users,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
	}
}

// Policy returns the classification rules the ledger applies.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// Today returns the current local calendar date.
func (l *Ledger) Today() string {
	return l.policy.DateOf(l.clock.Now())
}

// CheckIn starts the user's workday. The store creates the record atomically, so
// a second check-in on the same day fails with model.ErrAlreadyCheckedIn.
func (l *Ledger) CheckIn(ctx context.Context, userID string) (*model.AttendanceRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id: %w", model.ErrInvalidInput)
	}

	now := l.clock.Now()
	rec := &model.AttendanceRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        l.policy.DateOf(now),
		CheckInTime: &now,
		Status:      model.StatusPresent,
	}

	created, err := l.records.CreateCheckIn(ctx, rec)
	if err != nil {
		return nil, wrapInternal("failed to create check-in record", err)
	}

	log.Ctx(ctx).Info().Str("user_id", userID).Str("date", created.Date).Msg("Checked in")
	return created, nil
}

// CheckOut closes the user's workday, computing total hours and the late status.
func (l *Ledger) CheckOut(ctx context.Context, userID string) (*model.AttendanceRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id: %w", model.ErrInvalidInput)
	}

	now := l.clock.Now()
	rec, err := l.records.FindByUserAndDate(ctx, userID, l.policy.DateOf(now))
	if err != nil {
		return nil, wrapInternal("failed to query today's record", err)
	}

	switch {
	case !rec.CheckedIn():
		return nil, model.ErrNotCheckedIn
	case rec.CheckedOut():
		return nil, model.ErrAlreadyCheckedOut
	case now.Before(*rec.CheckInTime):
		return nil, model.ErrCheckOutBeforeCheckIn
	}

	hours := RoundHours(now.Sub(*rec.CheckInTime))
	status := l.policy.StatusAtCheckOut(rec)

	updated, err := l.records.CompleteCheckOut(ctx, rec.ID, now, hours, status)
	if err != nil {
		return nil, wrapInternal("failed to update check-out record", err)
	}

	log.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("date", updated.Date).
		Float64("total_hours", hours).
		Str("status", string(status)).
		Msg("Checked out")

	l.publishCheckOut(ctx, updated)
	return updated, nil
}

// publishCheckOut hands the checkout to the downstream workers. The record is
// already stored, so publish failures are logged rather than returned.
func (l *Ledger) publishCheckOut(ctx context.Context, rec *model.AttendanceRecord) {
	hours := 0.0
	if rec.TotalHours != nil {
		hours = *rec.TotalHours
	}

	syncEvent := messaging.CheckOutEvent{
		AttendanceID: rec.ID,
		UserID:       rec.UserID,
		Date:         rec.Date,
		CheckInTime:  *rec.CheckInTime,
		CheckOutTime: *rec.CheckOutTime,
		TotalHours:   hours,
		Status:       string(rec.Status),
	}
	if err := l.publisher.PublishSync(ctx, syncEvent); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("attendance_id", rec.ID).Msg("Failed to publish check-out event")
	}

	emailEvent := messaging.EmailEvent{
		AttendanceID: rec.ID,
		UserID:       rec.UserID,
		Date:         rec.Date,
		TotalHours:   hours,
		Status:       string(rec.Status),
		OccurredAt:   l.clock.Now(),
	}
	if err := l.publisher.PublishEmail(ctx, emailEvent); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("attendance_id", rec.ID).Msg("Failed to publish email event")
	}
}

// GetToday returns today's date and the user's record for it, or nil when there is none.
func (l *Ledger) GetToday(ctx context.Context, userID string) (string, *model.AttendanceRecord, error) {
	date := l.Today()
	rec, err := l.records.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return date, nil, wrapInternal("failed to query today's record", err)
	}
	return date, rec, nil
}

// GetHistory returns all of the user's records, newest first.
func (l *Ledger) GetHistory(ctx context.Context, userID string) ([]*model.AttendanceRecord, error) {
	records, err := l.records.ListByUser(ctx, userID, nil, 0)
	if err != nil {
		return nil, wrapInternal("failed to list history", err)
	}
	return records, nil
}

// EmployeeHistory is GetHistory for a user looked up by a manager. Ids that are
// not UUIDs cannot name a user and are reported as not found.
func (l *Ledger) EmployeeHistory(ctx context.Context, userID string) ([]*model.AttendanceRecord, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.ErrUserNotFound
	}
	if _, err := l.users.FindByID(ctx, userID); err != nil {
		return nil, wrapInternal("failed to find user", err)
	}
	return l.GetHistory(ctx, userID)
}

// GetMonthlySummary tallies the user's records of month ("YYYY-MM"), or of all
// time when month is empty.
func (l *Ledger) GetMonthlySummary(ctx context.Context, userID, month string) (*model.MonthlySummary, error) {
	var dr *repository.DateRange
	if month = strings.TrimSpace(month); month != "" {
		r, err := l.policy.MonthRange(month)
		if err != nil {
			return nil, err
		}
		dr = r
	}

	records, err := l.records.ListByUser(ctx, userID, dr, 0)
	if err != nil {
		return nil, wrapInternal("failed to list records for summary", err)
	}

	summary := Summarize(records)
	return &summary, nil
}

// Summarize counts records per status and sums their total hours.
func Summarize(records []*model.AttendanceRecord) model.MonthlySummary {
	var s model.MonthlySummary
	for _, r := range records {
		switch r.Status {
		case model.StatusPresent:
			s.Present++
		case model.StatusAbsent:
			s.Absent++
		case model.StatusLate:
			s.Late++
		case model.StatusHalfDay:
			s.HalfDay++
		}
		if r.TotalHours != nil {
			s.TotalHours += *r.TotalHours
		}
	}
	s.TotalHours = roundTo2(s.TotalHours)
	return s
}

// wrapInternal keeps domain errors intact and annotates everything else.
func wrapInternal(msg string, err error) error {
	if model.KindOf(err) != model.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
