package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/repository"
	"golang.org/x/sync/errgroup"
)

const (
	trendDays   = 7
	recentLimit = 7
)

// ListAll lists records joined with their owners for managers.
func (l *Ledger) ListAll(ctx context.Context, filter model.ListFilter) ([]*model.AttendanceWithUser, error) {
	filter.Date = strings.TrimSpace(filter.Date)
	filter.EmployeeID = strings.TrimSpace(filter.EmployeeID)

	if filter.Date != "" {
		d, err := l.policy.ParseDate(filter.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = d.Format(model.DateLayout)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", filter.Status, model.ErrInvalidStatus)
	}

	records, err := l.records.ListWithUsers(ctx, filter)
	if err != nil {
		return nil, wrapInternal("failed to list attendance", err)
	}
	return records, nil
}

// TeamSummaryForDate counts the roster and the day's present and late records.
// Absent is the roster size minus present and goes negative when the roster
// shrank after records were written.
func (l *Ledger) TeamSummaryForDate(ctx context.Context, date string) (*model.TeamSummary, error) {
	day, err := l.resolveDate(date)
	if err != nil {
		return nil, err
	}

	summary := &model.TeamSummary{Date: day}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := l.users.Count(gctx)
		summary.TotalEmployees = n
		return err
	})
	g.Go(func() error {
		n, err := l.records.CountCheckedIn(gctx, day)
		summary.Present = n
		return err
	})
	g.Go(func() error {
		n, err := l.records.CountByStatus(gctx, day, model.StatusLate)
		summary.Late = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapInternal("failed to build team summary", err)
	}

	summary.Absent = summary.TotalEmployees - summary.Present
	return summary, nil
}

// WeeklyTrend returns the present count of each of the seven days ending at
// endDate, oldest first.
func (l *Ledger) WeeklyTrend(ctx context.Context, endDate string) ([]model.TrendPoint, error) {
	end, err := l.resolveDate(endDate)
	if err != nil {
		return nil, err
	}
	endDay, _ := l.policy.ParseDate(end)

	points := make([]model.TrendPoint, trendDays)
	g, gctx := errgroup.WithContext(ctx)
	for i := range points {
		day := endDay.AddDate(0, 0, i-(trendDays-1)).Format(model.DateLayout)
		points[i].Date = day
		g.Go(func() error {
			n, err := l.records.CountCheckedIn(gctx, day)
			if err != nil {
				return err
			}
			points[i].Present = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapInternal("failed to build weekly trend", err)
	}
	return points, nil
}

// ExportRange flattens the records dated within [from, to] for serialization.
// Both bounds empty exports everything. A half-open range is rejected with
// model.ErrInvalidDateRange instead of silently widening to all records.
func (l *Ledger) ExportRange(ctx context.Context, from, to string) ([]model.ExportRow, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	var dr *repository.DateRange
	switch {
	case from == "" && to == "":
	case from == "" || to == "":
		return nil, fmt.Errorf("both from and to are required: %w", model.ErrInvalidDateRange)
	default:
		start, err := l.policy.ParseDate(from)
		if err != nil {
			return nil, err
		}
		end, err := l.policy.ParseDate(to)
		if err != nil {
			return nil, err
		}
		if start.After(end) {
			return nil, fmt.Errorf("from %s is after to %s: %w", from, to, model.ErrInvalidDateRange)
		}
		dr = &repository.DateRange{From: start, To: end}
	}

	records, err := l.records.ListForExport(ctx, dr)
	if err != nil {
		return nil, wrapInternal("failed to list records for export", err)
	}

	rows := make([]model.ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, l.exportRow(r))
	}
	return rows, nil
}

func (l *Ledger) exportRow(r *model.AttendanceWithUser) model.ExportRow {
	row := model.ExportRow{
		EmployeeID: r.User.EmployeeID,
		Name:       r.User.Name,
		Email:      r.User.Email,
		Department: r.User.Department,
		Date:       r.Date,
		Status:     string(r.Status),
	}
	if r.CheckInTime != nil {
		row.CheckInTime = r.CheckInTime.In(l.policy.location()).Format(time.RFC3339)
	}
	if r.CheckOutTime != nil {
		row.CheckOutTime = r.CheckOutTime.In(l.policy.location()).Format(time.RFC3339)
	}
	if r.TotalHours != nil {
		row.TotalHours = *r.TotalHours
	}
	return row
}

// EmployeeDashboard composes the current month summary, today's state and the
// most recent records of one user.
func (l *Ledger) EmployeeDashboard(ctx context.Context, userID string) (*model.EmployeeDashboard, error) {
	now := l.clock.Now()
	month := now.In(l.policy.location()).Format(model.MonthLayout)

	var (
		summary *model.MonthlySummary
		today   *model.AttendanceRecord
		recent  []*model.AttendanceRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := l.GetMonthlySummary(gctx, userID, month)
		summary = s
		return err
	})
	g.Go(func() error {
		rec, err := l.records.FindByUserAndDate(gctx, userID, l.policy.DateOf(now))
		today = rec
		return err
	})
	g.Go(func() error {
		recs, err := l.records.ListByUser(gctx, userID, nil, recentLimit)
		recent = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapInternal("failed to build employee dashboard", err)
	}

	return &model.EmployeeDashboard{
		TodayStatus: todayStatus(today),
		Today:       today,
		Present:     summary.Present,
		Absent:      summary.Absent,
		Late:        summary.Late,
		HalfDay:     summary.HalfDay,
		TotalHours:  summary.TotalHours,
		Recent:      recent,
	}, nil
}

func todayStatus(rec *model.AttendanceRecord) string {
	switch {
	case rec.CheckedOut():
		return "Checked Out"
	case rec.CheckedIn():
		return "Checked In"
	default:
		return "Not Checked In"
	}
}

// ManagerDashboard composes today's team summary with the trend of the last week.
func (l *Ledger) ManagerDashboard(ctx context.Context) (*model.ManagerDashboard, error) {
	today := l.Today()

	var (
		summary *model.TeamSummary
		trend   []model.TrendPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := l.TeamSummaryForDate(gctx, today)
		summary = s
		return err
	})
	g.Go(func() error {
		t, err := l.WeeklyTrend(gctx, today)
		trend = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.ManagerDashboard{
		Date:           summary.Date,
		TotalEmployees: summary.TotalEmployees,
		Present:        summary.Present,
		Absent:         summary.Absent,
		Late:           summary.Late,
		Trend:          trend,
	}, nil
}

// resolveDate validates a "YYYY-MM-DD" date, defaulting to today.
func (l *Ledger) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return l.Today(), nil
	}
	d, err := l.policy.ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.Format(model.DateLayout), nil
}
