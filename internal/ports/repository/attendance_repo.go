package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const recordColumns = `id, user_id, date, check_in_time, check_out_time, total_hours, status`

const joinedColumns = `a.id, a.user_id, a.date, a.check_in_time, a.check_out_time, a.total_hours, a.status,
               u.name, u.email, u.employee_id, u.department`

// AttendanceStore is the PostgreSQL implementation of AttendanceRepository.
type AttendanceStore struct {
	db database.Queryer
}

// NewAttendanceRepository create new instance
func NewAttendanceRepository(db database.Queryer) *AttendanceStore {
	return &AttendanceStore{db: db}
}

// CreateCheckIn inserts the day's record or fills the check-in of a placeholder.
// The conflict target is the (user_id, date) unique key, so two concurrent check-ins
// cannot both succeed: the loser gets no row back.
func (r *AttendanceStore) CreateCheckIn(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	tagUser(ctx, rec.UserID)

	query := `INSERT INTO attendance_records (id, user_id, date, check_in_time, status)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (user_id, date) DO UPDATE
                 SET check_in_time = EXCLUDED.check_in_time,
                     updated_at = now()
               WHERE attendance_records.check_in_time IS NULL
              RETURNING ` + recordColumns

	row := r.db.QueryRow(ctx, query, rec.ID, rec.UserID, rec.Date, rec.CheckInTime, string(rec.Status))
	created, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAlreadyCheckedIn
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// CompleteCheckOut do checkout.
func (r *AttendanceStore) CompleteCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64, status model.AttendanceStatus) (*model.AttendanceRecord, error) {
	query := `UPDATE attendance_records
              SET check_out_time = $1,
                  total_hours = $2,
                  status = $3,
                  updated_at = now()
              WHERE id = $4 AND check_out_time IS NULL
              RETURNING ` + recordColumns

	row := r.db.QueryRow(ctx, query, checkOut, totalHours, string(status), id)
	updated, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAlreadyCheckedOut
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	tagUser(ctx, updated.UserID)
	return updated, nil
}

// FindByUserAndDate get the record of a user for one day.
func (r *AttendanceStore) FindByUserAndDate(ctx context.Context, userID, date string) (*model.AttendanceRecord, error) {
	tagUser(ctx, userID)

	query := `SELECT ` + recordColumns + `
              FROM attendance_records
              WHERE user_id = $1 AND date = $2`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return rec, nil
}

// GetByID fetches a complete attendance record by its ID.
func (r *AttendanceStore) GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRecordNotFound
	}
	if err != nil {
		return nil, translatePgError(err)
	}
	return rec, nil
}

func (r *AttendanceStore) ListByUser(ctx context.Context, userID string, dr *DateRange, limit int) ([]*model.AttendanceRecord, error) {
	tagUser(ctx, userID)

	args := []any{userID}
	query := `SELECT ` + recordColumns + `
              FROM attendance_records
              WHERE user_id = $1`
	if dr != nil {
		query += ` AND date BETWEEN $2 AND $3`
		args = append(args, dr.From, dr.To)
	}
	query += ` ORDER BY date DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	records := make([]*model.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, translatePgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return records, nil
}

// ListWithUsers lists records joined with their owners, newest day first.
func (r *AttendanceStore) ListWithUsers(ctx context.Context, filter model.ListFilter) ([]*model.AttendanceWithUser, error) {
	args := make([]any, 0, 3)
	conditions := make([]string, 0, 3)

	if filter.Date != "" {
		args = append(args, filter.Date)
		conditions = append(conditions, "a.date = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, "a.status = $"+strconv.Itoa(len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		conditions = append(conditions, "u.employee_id = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `SELECT ` + joinedColumns + `
              FROM attendance_records a
              JOIN users u ON u.id = a.user_id` + whereClause + `
              ORDER BY a.date DESC, u.employee_id`

	return r.queryJoined(ctx, query, args...)
}

// ListForExport lists records joined with their owners, oldest day first.
func (r *AttendanceStore) ListForExport(ctx context.Context, dr *DateRange) ([]*model.AttendanceWithUser, error) {
	var args []any
	whereClause := ""
	if dr != nil {
		whereClause = " WHERE a.date BETWEEN $1 AND $2"
		args = append(args, dr.From, dr.To)
	}

	query := `SELECT ` + joinedColumns + `
              FROM attendance_records a
              JOIN users u ON u.id = a.user_id` + whereClause + `
              ORDER BY a.date ASC, u.employee_id`

	return r.queryJoined(ctx, query, args...)
}

// CountCheckedIn counts records of a day that carry a check-in.
func (r *AttendanceStore) CountCheckedIn(ctx context.Context, date string) (int, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM attendance_records WHERE date = $1 AND check_in_time IS NOT NULL`,
		date,
	).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return int(n), nil
}

func (r *AttendanceStore) CountByStatus(ctx context.Context, date string, status model.AttendanceStatus) (int, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM attendance_records WHERE date = $1 AND status = $2`,
		date, string(status),
	).Scan(&n)
	if err != nil {
		return 0, translatePgError(err)
	}
	return int(n), nil
}

func (r *AttendanceStore) queryJoined(ctx context.Context, query string, args ...any) ([]*model.AttendanceWithUser, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	result := make([]*model.AttendanceWithUser, 0)
	for rows.Next() {
		item, err := scanJoined(rows)
		if err != nil {
			return nil, translatePgError(err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}
	return result, nil
}

func scanRecord(row pgx.Row) (*model.AttendanceRecord, error) {
	var (
		rec      model.AttendanceRecord
		date     time.Time
		checkIn  sql.NullTime
		checkOut sql.NullTime
		hours    sql.NullFloat64
		status   string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &date, &checkIn, &checkOut, &hours, &status); err != nil {
		return nil, err
	}
	fillRecord(&rec, date, checkIn, checkOut, hours, status)
	return &rec, nil
}

func scanJoined(row pgx.Row) (*model.AttendanceWithUser, error) {
	var (
		item     model.AttendanceWithUser
		date     time.Time
		checkIn  sql.NullTime
		checkOut sql.NullTime
		hours    sql.NullFloat64
		status   string
	)
	if err := row.Scan(
		&item.ID, &item.UserID, &date, &checkIn, &checkOut, &hours, &status,
		&item.User.Name, &item.User.Email, &item.User.EmployeeID, &item.User.Department,
	); err != nil {
		return nil, err
	}
	fillRecord(&item.AttendanceRecord, date, checkIn, checkOut, hours, status)
	item.User.ID = item.UserID
	return &item, nil
}

func fillRecord(rec *model.AttendanceRecord, date time.Time, checkIn, checkOut sql.NullTime, hours sql.NullFloat64, status string) {
	rec.Date = date.Format(model.DateLayout)
	rec.Status = model.AttendanceStatus(status)
	if checkIn.Valid {
		t := checkIn.Time
		rec.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	if hours.Valid {
		h := hours.Float64
		rec.TotalHours = &h
	}
}

func tagUser(ctx context.Context, userID string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.userId", userID))
}
