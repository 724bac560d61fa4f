package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orionfest/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a queued email log row and returns its ID.
func (r *Repository) Create(ctx context.Context, visitorID uuid.UUID, recipient, subject string) (uuid.UUID, error) {
	const q = `INSERT INTO email_logs (visitor_id, recipient_email, subject, status)
		VALUES ($1, $2, $3, 'queued') RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, visitorID, recipient, subject).Scan(&id)
	return id, err
}

// MarkSent sets a log row to sent.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = 'sent', sent_at = NOW(), error_message = NULL WHERE id = $1`, id)
	return err
}

// MarkFailed sets a log row to failed with the error message.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = 'failed', error_message = $2 WHERE id = $1`, id, errMsg)
	return err
}

// List returns all email logs, newest first.
func (r *Repository) List(ctx context.Context) ([]models.EmailLog, error) {
	const q = `SELECT id, visitor_id, recipient_email, COALESCE(subject,''), status,
		COALESCE(error_message,''), sent_at, created_at
		FROM email_logs ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.VisitorID, &el.RecipientEmail, &el.Subject, &el.Status,
			&el.ErrorMessage, &el.SentAt, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, rows.Err()
}
