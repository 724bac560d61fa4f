// Package worker processes background jobs dequeued from Redis.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/email"
	"github.com/orionfest/backend/internal/emaillogs"
	"github.com/orionfest/backend/pkg/queue"
)

// EmailProcessor delivers queued ticket confirmation emails and records the
// outcome in the email log.
type EmailProcessor struct {
	sender email.Sender
	logs   *emaillogs.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates a ticket email processor.
func NewEmailProcessor(sender email.Sender, logs *emaillogs.Repository, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{sender: sender, logs: logs, queue: q, logger: logger}
}

// Process executes one ticket email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeTicketEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.TicketEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.sender.Send(ctx, payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if markErr := p.logs.MarkFailed(ctx, payload.EmailLogID, err.Error()); markErr != nil {
			p.logger.Error("mark email failed errored", zap.Error(markErr), zap.String("email_log_id", payload.EmailLogID.String()))
		}
		return fmt.Errorf("send: %w", err)
	}

	if err := p.logs.MarkSent(ctx, payload.EmailLogID); err != nil {
		p.logger.Error("mark email sent errored", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
	p.logger.Info("ticket email sent",
		zap.String("recipient", payload.RecipientEmail), zap.String("visitor_id", payload.VisitorID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
