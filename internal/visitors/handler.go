package visitors

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/middleware"
	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/ticket"
	"github.com/orionfest/backend/pkg/response"
)

// IdentityResolver reports the provider identity attached to a session, if any.
type IdentityResolver interface {
	Identity(ctx context.Context, sessionID string) (*ProviderIdentity, bool)
}

// TicketBinder records the issued ticket on the share session so the deferred
// share flow can resume after a provider redirect.
type TicketBinder interface {
	TicketIssued(ctx context.Context, sessionID string, v *models.Visitor) error
}

// Handler handles visitor HTTP endpoints.
type Handler struct {
	service    *Service
	repo       *Repository
	identities IdentityResolver
	share      TicketBinder
	logger     *zap.Logger
}

// NewHandler creates a visitors handler.
func NewHandler(service *Service, repo *Repository, identities IdentityResolver, share TicketBinder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, identities: identities, share: share, logger: logger}
}

// Register handles POST /api/register. Runs the full registration workflow
// and returns the issued ticket with delivery metadata.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "fields": fieldErrs})
		return
	}

	sessionID := middleware.SessionID(c)
	var ident *ProviderIdentity
	linkedInAuth := false
	if h.identities != nil && sessionID != "" {
		ident, linkedInAuth = h.identities.Identity(c.Request.Context(), sessionID)
	}

	result, err := h.service.Register(c.Request.Context(), &req, ident)
	if err != nil {
		if conflict := AsConflict(err); conflict != nil {
			response.Conflict(c, conflict.Message)
			return
		}
		if errors.Is(err, ticket.ErrExhaustedRetries) {
			h.logger.Error("ticket code space exhausted", zap.String("email", req.Email))
			response.Internal(c, "failed to register, please try again")
			return
		}
		h.logger.Error("registration failed", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to register")
		return
	}

	if h.share != nil && sessionID != "" {
		if err := h.share.TicketIssued(c.Request.Context(), sessionID, result.Visitor); err != nil {
			h.logger.Warn("bind ticket to share session failed", zap.Error(err))
		}
	}

	var userID *uuid.UUID
	if result.AccountID != nil {
		userID = result.AccountID
	}
	v := result.Visitor
	response.Created(c, gin.H{
		"id":           v.ID,
		"ticketCode":   v.TicketCode,
		"firstname":    v.FirstName,
		"lastname":     v.LastName,
		"contact":      v.Phone,
		"age":          v.Age,
		"organization": v.Organization,
		"industry":     v.Industry,
		"profileUrl":   v.ProfileURL,
		"ticketHtml":   result.TicketHTML,
		"userId":       userID,
		"linkedInAuth": linkedInAuth,
		"email": gin.H{
			"ok":      result.EmailOK,
			"address": v.Email,
			"error":   result.EmailError,
		},
	})
}

// List handles GET /api/visitors (admin).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list visitors")
		return
	}
	response.OK(c, list)
}

// ApproveFootfall handles PATCH /api/visitors/:id/footfall (admin).
// Marks the visitor's footfall approved and increments the counter.
func (h *Handler) ApproveFootfall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid visitor id")
		return
	}
	v, err := h.repo.ApproveFootfall(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to update footfall")
		return
	}
	if v == nil {
		response.NotFound(c, "visitor not found")
		return
	}
	response.OK(c, v)
}
