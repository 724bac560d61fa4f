package linkedin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/middleware"
	"github.com/orionfest/backend/pkg/response"
)

// SessionStore binds provider identities to browser sessions.
type SessionStore interface {
	SaveIdentity(ctx context.Context, sessionID string, p Profile, accessToken string) error
	AccessToken(ctx context.Context, sessionID string) (string, error)
}

// TemplateResolver turns a named share template into a fetchable image URL.
type TemplateResolver interface {
	FindTemplateKey(ctx context.Context, name string) (string, error)
	TemplateURL(ctx context.Context, key string) (string, error)
}

// Handler handles LinkedIn OAuth and share-post HTTP endpoints.
type Handler struct {
	client          *Client
	sessions        SessionStore
	templates       TemplateResolver // may be nil when S3 is not configured
	successRedirect string
	logger          *zap.Logger
}

// NewHandler creates a LinkedIn handler.
func NewHandler(client *Client, sessions SessionStore, templates TemplateResolver, successRedirect string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, sessions: sessions, templates: templates, successRedirect: successRedirect, logger: logger}
}

// Authorize handles GET /api/auth/linkedin: redirects to provider sign-in.
// The session ID doubles as the OAuth state and is checked on callback.
func (h *Handler) Authorize(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	c.Redirect(http.StatusFound, h.client.AuthCodeURL(sessionID))
}

// Callback handles GET /api/auth/linkedin/callback: exchanges the code,
// stores the identity on the session, and sends the browser back to the
// registration page where the share flow resumes.
func (h *Handler) Callback(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" || c.Query("state") != sessionID {
		response.BadRequest(c, "state mismatch")
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("provider sign-in declined", zap.String("error", errParam))
		c.Redirect(http.StatusFound, h.successRedirect+"?linkedin=declined")
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing code")
		return
	}

	tok, err := h.client.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.successRedirect+"?linkedin=error")
		return
	}
	profile, err := h.client.ProfileOf(c.Request.Context(), tok.AccessToken)
	if err != nil {
		h.logger.Error("profile fetch failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.successRedirect+"?linkedin=error")
		return
	}
	if err := h.sessions.SaveIdentity(c.Request.Context(), sessionID, *profile, tok.AccessToken); err != nil {
		h.logger.Error("save identity failed", zap.Error(err))
		response.Internal(c, "failed to store sign-in")
		return
	}
	c.Redirect(http.StatusFound, h.successRedirect+"?linkedin=connected")
}

// PostRequest is the body for POST /api/linkedin/post.
type PostRequest struct {
	Comment     string `json:"comment" binding:"required"`
	ShareURL    string `json:"shareUrl" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Template    string `json:"template"`
	ImageURL    string `json:"imageUrl"`
}

// Post handles POST /api/linkedin/post: publishes one share on behalf of the
// session's member. Returns 401 when the token is absent or expired, which
// signals the client to start a fresh sign-in.
func (h *Handler) Post(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		response.BadRequest(c, "missing session")
		return
	}
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	token, err := h.sessions.AccessToken(c.Request.Context(), sessionID)
	if err != nil {
		response.Internal(c, "failed to load session")
		return
	}
	if token == "" {
		response.Unauthorized(c, "LinkedIn sign-in required")
		return
	}

	imageURL := req.ImageURL
	if imageURL == "" && req.Template != "" && h.templates != nil {
		key, err := h.templates.FindTemplateKey(c.Request.Context(), req.Template)
		if err == nil {
			if url, err := h.templates.TemplateURL(c.Request.Context(), key); err == nil {
				imageURL = url
			}
		} else {
			h.logger.Warn("template resolve failed", zap.String("template", req.Template), zap.Error(err))
		}
	}

	result, err := h.client.Post(c.Request.Context(), token, PostInput{
		Comment:     req.Comment,
		ShareURL:    req.ShareURL,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    imageURL,
	})
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			response.Unauthorized(c, "LinkedIn session expired, please sign in again")
			return
		}
		h.logger.Error("share post failed", zap.Error(err))
		response.Internal(c, "failed to create post")
		return
	}
	response.OK(c, result)
}
