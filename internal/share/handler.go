package share

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/middleware"
	"github.com/orionfest/backend/pkg/response"
)

// Handler exposes the share coordinator over HTTP.
type Handler struct {
	coordinator *Coordinator
	logger      *zap.Logger
}

// NewHandler creates a share handler.
func NewHandler(coordinator *Coordinator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{coordinator: coordinator, logger: logger}
}

// ChoiceRequest is the body for POST /api/share/choice.
type ChoiceRequest struct {
	Choice string `json:"choice" binding:"required"`
}

// Choice handles POST /api/share/choice: records the user's decision at the
// pre-registration share prompt.
func (h *Handler) Choice(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	var req ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.coordinator.Choice(c.Request.Context(), sessionID, req.Choice)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, s)
}

// Resume handles GET /api/share/resume: called after registration or after
// returning from the provider redirect; fires the deferred share at most once.
func (h *Handler) Resume(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	out, err := h.coordinator.Resume(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("share resume failed", zap.Error(err), zap.String("session_id", sessionID))
		response.Internal(c, "failed to resume share")
		return
	}
	response.OK(c, out)
}

// Retry handles POST /api/share/retry: explicit user-initiated share,
// independent of the automatic one-shot latch.
func (h *Handler) Retry(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	out, err := h.coordinator.Retry(c.Request.Context(), sessionID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, out)
}
