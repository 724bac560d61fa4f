package emaillogs

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/pkg/response"
)

// VisitorSource looks up visitors for resends.
type VisitorSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error)
}

// Renderer renders the ticket document for resends.
type Renderer interface {
	RenderTicket(v *models.Visitor) (string, error)
}

// Mailer enqueues a ticket email.
type Mailer interface {
	SendTicket(ctx context.Context, v *models.Visitor, html string) error
}

// Handler handles email log HTTP endpoints (admin).
type Handler struct {
	repo     *Repository
	visitors VisitorSource
	renderer Renderer
	mailer   Mailer
	logger   *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, visitors VisitorSource, renderer Renderer, mailer Mailer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, visitors: visitors, renderer: renderer, mailer: mailer, logger: logger}
}

// List handles GET /api/emails.
func (h *Handler) List(c *gin.Context) {
	logs, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}

// ResendRequest is the body for POST /api/emails/resend.
type ResendRequest struct {
	VisitorID string `json:"visitor_id" binding:"required,uuid"`
}

// Resend handles POST /api/emails/resend: re-renders the visitor's ticket and
// enqueues a fresh confirmation email.
func (h *Handler) Resend(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "visitor_id required")
		return
	}
	visitorID, _ := uuid.Parse(req.VisitorID)
	v, err := h.visitors.GetByID(c.Request.Context(), visitorID)
	if err != nil {
		response.Internal(c, "failed to load visitor")
		return
	}
	if v == nil {
		response.NotFound(c, "visitor not found")
		return
	}
	html, err := h.renderer.RenderTicket(v)
	if err != nil {
		response.Internal(c, "failed to render ticket")
		return
	}
	if err := h.mailer.SendTicket(c.Request.Context(), v, html); err != nil {
		h.logger.Error("resend enqueue failed", zap.Error(err), zap.String("visitor_id", v.ID.String()))
		response.Internal(c, "failed to queue email")
		return
	}
	response.OK(c, gin.H{"message": "resend queued"})
}
