package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/pkg/response"
	"github.com/orionfest/backend/pkg/utils"
)

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"contact"`
	Role     string `json:"role"` // optional, defaults to visitor
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string               `json:"token"`
	User  models.AccountPublic `json:"user"`
}

// Handler handles auth HTTP endpoints (the authentication-first account path).
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleVisitor
	switch req.Role {
	case "", "visitor":
	case "admin", "staff":
		// Privileged accounts are created by an existing admin, never
		// self-assigned on the public endpoint.
		if !h.callerIsAdmin(c) {
			response.Forbidden(c, "admin sign-in required to create privileged accounts")
			return
		}
		role = models.Role(req.Role)
	default:
		response.BadRequest(c, "invalid role")
		return
	}

	existing, err := h.repo.FindByEmailOrPhone(c.Request.Context(), req.Email, req.Phone)
	if err != nil {
		response.Internal(c, "failed to check account")
		return
	}
	if existing != nil {
		if existing.Email == req.Email {
			response.Conflict(c, "An account with this email already exists")
		} else {
			response.Conflict(c, "An account with this contact number already exists")
		}
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	account, err := h.repo.Create(c.Request.Context(), req.Email, req.Phone, hash, req.FullName, role)
	if err != nil {
		h.logger.Error("create account failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, err := h.jwt.Generate(account.ID, account.Email, string(account.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: account.ToPublic()})
}

// callerIsAdmin reports whether the request carries a valid admin bearer token.
func (h *Handler) callerIsAdmin(c *gin.Context) bool {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return false
	}
	claims, err := h.jwt.Validate(parts[1])
	return err == nil && claims.Role == string(models.RoleAdmin)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	account, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || account == nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if account.Password == "" || !utils.CheckPassword(req.Password, account.Password) {
		// Shadow accounts have no password and cannot log in locally.
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(account.ID, account.Email, string(account.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: account.ToPublic()})
}
