package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"attendance.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
)

// MaxRetries bounds the attempts to mail one summary.
const MaxRetries = 10

// UserFinder resolves the recipient of a summary.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type EmailProcessor struct {
	emailService core.EmailService
	users        UserFinder
	deliveries   repository.DeliveryRepository
}

// NewProcessor sets up a new processor for handling email-related jobs.
// It needs an email service to send emails, the user directory to address them
// and a delivery store to track the job status.
func NewProcessor(emailService core.EmailService, users UserFinder, deliveries repository.DeliveryRepository) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		users:        users,
		deliveries:   deliveries,
	}
}

// Process is the main entry point for handling a message from the email queue.
// It tries to send an email and will tell the worker to retry if something goes wrong.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.EmailEvent
	if msg.Body == nil {
		return false, 0, errors.New("email: empty message body")
	}
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal email event")
		return false, 0, err
	}

	delivery, err := p.deliveries.GetDelivery(ctx, event.AttendanceID, model.ChannelEmail)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get delivery from db for email processing: %w", err)
	}
	if delivery.Status == model.DeliveryCompleted || delivery.Status == model.DeliveryFailed {
		log.Ctx(ctx).Info().Str("attendance_id", event.AttendanceID).Str("status", string(delivery.Status)).Msg("Email already handled. Skipping.")
		return false, 0, nil
	}

	user, err := p.users.FindByID(ctx, event.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = p.deliveries.UpdateDeliveryStatus(ctx, event.AttendanceID, model.ChannelEmail, model.DeliveryFailed, delivery.RetryCount)
		return false, 0, fmt.Errorf("email: recipient %s: %w", event.UserID, err)
	}
	if err != nil {
		return true, 10, fmt.Errorf("failed to look up recipient: %w", err)
	}

	summary := core.ShiftSummary{
		Name:       user.Name,
		Date:       event.Date,
		TotalHours: event.TotalHours,
		Status:     event.Status,
	}
	if err := p.emailService.SendCheckOutSummary(ctx, user.Email, summary); err != nil {
		newCount := delivery.RetryCount + 1
		status := model.DeliveryPending
		if newCount >= MaxRetries {
			status = model.DeliveryFailed
		}
		if uerr := p.deliveries.UpdateDeliveryStatus(ctx, event.AttendanceID, model.ChannelEmail, status, newCount); uerr != nil {
			log.Ctx(ctx).Error().Err(uerr).Msg("Failed to record email retry")
		}
		if status == model.DeliveryFailed {
			return false, 0, fmt.Errorf("email: giving up after %d attempts: %w", newCount, err)
		}
		return true, worker.CalculateBackoff(newCount), err
	}

	if err := p.deliveries.UpdateDeliveryStatus(ctx, event.AttendanceID, model.ChannelEmail, model.DeliveryCompleted, delivery.RetryCount); err != nil {
		return true, 10, fmt.Errorf("failed to mark email delivered: %w", err)
	}
	log.Ctx(ctx).Info().Str("attendance_id", event.AttendanceID).Msg("Checkout summary mailed")
	return false, 0, nil
}
