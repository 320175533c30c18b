package repository

import (
	"context"
	"regexp"
	"testing"

	"attendance.service/internal/core/model"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestDeliveryStore_GetDelivery_DefaultsToPending(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewDeliveryRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance_deliveries`)).
		WithArgs("rec-1", "hrsync").
		WillReturnRows(pgxmock.NewRows([]string{"status", "retry_count"}))

	d, err := repo.GetDelivery(context.Background(), "rec-1", model.ChannelHRSync)
	if err != nil {
		t.Fatalf("GetDelivery returned error: %v", err)
	}
	if d.Status != model.DeliveryPending || d.RetryCount != 0 || d.Channel != model.ChannelHRSync {
		t.Fatalf("unexpected delivery %+v", d)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeliveryStore_GetDelivery_Existing(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewDeliveryRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance_deliveries`)).
		WithArgs("rec-1", "email").
		WillReturnRows(pgxmock.NewRows([]string{"status", "retry_count"}).AddRow("FAILED", int32(10)))

	d, err := repo.GetDelivery(context.Background(), "rec-1", model.ChannelEmail)
	if err != nil {
		t.Fatalf("GetDelivery returned error: %v", err)
	}
	if d.Status != model.DeliveryFailed || d.RetryCount != 10 {
		t.Fatalf("unexpected delivery %+v", d)
	}
}

func TestDeliveryStore_UpdateDeliveryStatus(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	repo := NewDeliveryRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO attendance_deliveries`)).
		WithArgs("rec-1", "hrsync", "COMPLETED", 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.UpdateDeliveryStatus(context.Background(), "rec-1", model.ChannelHRSync, model.DeliveryCompleted, 2); err != nil {
		t.Fatalf("UpdateDeliveryStatus returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
