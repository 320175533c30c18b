package hrsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"attendance.service/internal/worker"
	"attendance.service/internal/worker/hrapi"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// MaxRetries bounds the attempts of one delivery before it is marked failed.
const MaxRetries = 10

// Processor forwards checkout events to the HR system. It uses a circuit breaker
// so a struggling HR API is not hammered by every queued message.
type Processor struct {
	deliveries repository.DeliveryRepository
	client     hrapi.Client
	cb         *gobreaker.CircuitBreaker
}

// NewProcessor creates a processor for the HR sync queue.
func NewProcessor(deliveries repository.DeliveryRepository, client hrapi.Client) *Processor {
	settings := gobreaker.Settings{
		Name:        "HR-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is at least 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &Processor{
		deliveries: deliveries,
		client:     client,
		cb:         gobreaker.NewCircuitBreaker(settings),
	}
}

// Process handles one message of the HR sync queue.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.CheckOutEvent
	if msg.Body == nil {
		return false, 0, errors.New("hrsync: empty message body")
	}
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal check-out event")
		return false, 0, err
	}
	if event.AttendanceID == "" {
		return false, 0, errors.New("hrsync: event without attendance id")
	}

	logger := log.Ctx(ctx).With().Str("attendance_id", event.AttendanceID).Logger()
	logger.Info().Float64("total_hours", event.TotalHours).Msg("Processing check-out")

	delivery, err := p.deliveries.GetDelivery(ctx, event.AttendanceID, model.ChannelHRSync)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get delivery from db: %w", err)
	}
	switch delivery.Status {
	case model.DeliveryCompleted:
		logger.Info().Msg("Check-out already synced. Skipping.")
		return false, 0, nil
	case model.DeliveryFailed:
		logger.Warn().Msg("Check-out sync previously failed permanently. Skipping.")
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.client.RecordCheckOut(ctx, event)
	})
	if err != nil {
		return p.fail(ctx, event.AttendanceID, delivery.RetryCount+1, err)
	}

	if err := p.deliveries.UpdateDeliveryStatus(ctx, event.AttendanceID, model.ChannelHRSync, model.DeliveryCompleted, delivery.RetryCount); err != nil {
		return true, 10, fmt.Errorf("failed to mark delivery completed: %w", err)
	}
	return false, 0, nil
}

func (p *Processor) fail(ctx context.Context, attendanceID string, retries int, cause error) (bool, int32, error) {
	var statusErr *hrapi.StatusError
	permanent := errors.As(cause, &statusErr) && statusErr.Permanent()

	if errors.Is(cause, gobreaker.ErrOpenState) || errors.Is(cause, gobreaker.ErrTooManyRequests) {
		log.Ctx(ctx).Warn().Msg("Circuit breaker is open; skipping HR API call")
	}

	status := model.DeliveryPending
	if permanent || retries >= MaxRetries {
		status = model.DeliveryFailed
	}
	if err := p.deliveries.UpdateDeliveryStatus(ctx, attendanceID, model.ChannelHRSync, status, retries); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to record delivery retry")
	}

	if status == model.DeliveryFailed {
		return false, 0, fmt.Errorf("hrsync: giving up after %d attempts: %w", retries, cause)
	}
	return true, worker.CalculateBackoff(retries), cause
}
