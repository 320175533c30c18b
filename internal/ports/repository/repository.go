package repository

import (
	"context"
	"time"

	"attendance.service/internal/core/model"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// AttendanceRepository contract
type AttendanceRepository interface {
	// CreateCheckIn creates the (userID, date) record, or sets the check-in time of a
	// placeholder that has none, in a single atomic statement. It returns
	// model.ErrAlreadyCheckedIn when the day already has a check-in.
	CreateCheckIn(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error)
	// CompleteCheckOut stores the checkout fields unless the record was already checked out,
	// in which case it returns model.ErrAlreadyCheckedOut.
	CompleteCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64, status model.AttendanceStatus) (*model.AttendanceRecord, error)
	// FindByUserAndDate returns nil, nil when no record exists.
	FindByUserAndDate(ctx context.Context, userID, date string) (*model.AttendanceRecord, error)
	GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	// ListByUser returns the user's records ordered by date descending, optionally
	// restricted to a range. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, r *DateRange, limit int) ([]*model.AttendanceRecord, error)
	ListWithUsers(ctx context.Context, filter model.ListFilter) ([]*model.AttendanceWithUser, error)
	ListForExport(ctx context.Context, r *DateRange) ([]*model.AttendanceWithUser, error)
	CountCheckedIn(ctx context.Context, date string) (int, error)
	CountByStatus(ctx context.Context, date string, status model.AttendanceStatus) (int, error)
}

// UserRepository is the user directory.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Count(ctx context.Context) (int, error)
}

// DeliveryRepository tracks downstream processing of checkout events.
type DeliveryRepository interface {
	// GetDelivery returns a pending delivery with zero retries when none was recorded yet.
	GetDelivery(ctx context.Context, attendanceID string, channel model.DeliveryChannel) (*model.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, attendanceID string, channel model.DeliveryChannel, status model.DeliveryStatus, retryCount int) error
}
