package messaging

import "time"

// CheckOutEvent is the JSON payload sent via SQS to the HR sync queue.
type CheckOutEvent struct {
	AttendanceID string    `json:"attendanceId"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`
	CheckInTime  time.Time `json:"checkInTime"`
	CheckOutTime time.Time `json:"checkOutTime"`
	TotalHours   float64   `json:"totalHours"`
	Status       string    `json:"status"`
}

// EmailEvent is the JSON payload sent via SQS to the email queue.
type EmailEvent struct {
	AttendanceID string    `json:"attendanceId"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`
	TotalHours   float64   `json:"totalHours"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurredAt"`
}
