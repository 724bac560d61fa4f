package models

import (
	"time"

	"github.com/google/uuid"
)

// Email delivery statuses.
const (
	EmailStatusQueued = "queued"
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records one ticket confirmation email attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	VisitorID      uuid.UUID  `json:"visitor_id"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
