package repository

import (
	"context"
	"errors"

	"attendance.service/internal/core/model"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5"
)

// DeliveryStore is the PostgreSQL implementation of DeliveryRepository.
type DeliveryStore struct {
	db database.Queryer
}

func NewDeliveryRepository(db database.Queryer) *DeliveryStore {
	return &DeliveryStore{db: db}
}

// GetDelivery retrieves the delivery state of a checkout event for one channel.
func (r *DeliveryStore) GetDelivery(ctx context.Context, attendanceID string, channel model.DeliveryChannel) (*model.Delivery, error) {
	d := &model.Delivery{AttendanceID: attendanceID, Channel: channel, Status: model.DeliveryPending}

	var (
		status string
		retry  int32
	)
	err := r.db.QueryRow(ctx,
		`SELECT status, retry_count FROM attendance_deliveries WHERE attendance_id = $1 AND channel = $2`,
		attendanceID, string(channel),
	).Scan(&status, &retry)
	if errors.Is(err, pgx.ErrNoRows) {
		return d, nil
	}
	if err != nil {
		return nil, translatePgError(err)
	}

	d.Status = model.DeliveryStatus(status)
	d.RetryCount = int(retry)
	return d, nil
}

// UpdateDeliveryStatus updates the status and retry count for a delivery job.
func (r *DeliveryStore) UpdateDeliveryStatus(ctx context.Context, attendanceID string, channel model.DeliveryChannel, status model.DeliveryStatus, retryCount int) error {
	query := `INSERT INTO attendance_deliveries (attendance_id, channel, status, retry_count)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (attendance_id, channel) DO UPDATE
                 SET status = EXCLUDED.status,
                     retry_count = EXCLUDED.retry_count,
                     updated_at = now()`

	_, err := r.db.Exec(ctx, query, attendanceID, string(channel), string(status), retryCount)
	return translatePgError(err)
}
