// Package analytics serves aggregate counters for the admin dashboard.
package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orionfest/backend/pkg/response"
)

// Handler handles admin stats endpoints.
type Handler struct {
	pool *pgxpool.Pool
}

// NewHandler creates an analytics handler.
func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// Stats handles GET /api/stats (admin). Returns registration, footfall and
// email delivery counters.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var visitors, footfallApproved, footfallTotal int
	err := h.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE footfall_approved), COALESCE(SUM(footfall_count),0) FROM visitors`).
		Scan(&visitors, &footfallApproved, &footfallTotal)
	if err != nil {
		response.Internal(c, "failed to load stats")
		return
	}

	var accounts int
	if err := h.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accounts); err != nil {
		response.Internal(c, "failed to load stats")
		return
	}

	var emailsSent, emailsFailed int
	err = h.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE status = 'sent'), COUNT(*) FILTER (WHERE status = 'failed') FROM email_logs`).
		Scan(&emailsSent, &emailsFailed)
	if err != nil {
		response.Internal(c, "failed to load stats")
		return
	}

	response.OK(c, gin.H{
		"visitors":          visitors,
		"accounts":          accounts,
		"footfall_approved": footfallApproved,
		"footfall_total":    footfallTotal,
		"emails_sent":       emailsSent,
		"emails_failed":     emailsFailed,
	})
}
