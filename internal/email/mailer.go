package email

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/pkg/queue"
)

// LogStore records email attempts for the admin audit log.
type LogStore interface {
	Create(ctx context.Context, visitorID uuid.UUID, recipient, subject string) (uuid.UUID, error)
}

// QueueMailer implements the registration service's mailer by logging the
// attempt and handing delivery to the background worker.
type QueueMailer struct {
	queue    *queue.Queue
	logs     LogStore
	renderer *Renderer
	logger   *zap.Logger
}

// NewQueueMailer creates a queue-backed mailer.
func NewQueueMailer(q *queue.Queue, logs LogStore, renderer *Renderer, logger *zap.Logger) *QueueMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueMailer{queue: q, logs: logs, renderer: renderer, logger: logger}
}

// SendTicket enqueues the rendered ticket for delivery. An error here means
// the mail was not queued; the caller reports it without failing registration.
func (m *QueueMailer) SendTicket(ctx context.Context, v *models.Visitor, html string) error {
	subject := m.renderer.Subject(v)
	logID, err := m.logs.Create(ctx, v.ID, v.Email, subject)
	if err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	err = m.queue.EnqueueTicketEmail(ctx, queue.TicketEmailPayload{
		VisitorID:      v.ID,
		EmailLogID:     logID,
		RecipientEmail: v.Email,
		Subject:        subject,
		BodyHTML:       html,
	})
	if err != nil {
		return fmt.Errorf("enqueue ticket email: %w", err)
	}
	return nil
}
