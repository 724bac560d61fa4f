package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfest/backend/internal/models"
)

func newAuthRouter(jwtService *JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(nil, jwtService, nil)
	r.POST("/api/auth/register", h.Register)
	return r
}

func postAuthRegister(t *testing.T, r *gin.Engine, body RegisterRequest, token string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func privilegedRequest(role string) RegisterRequest {
	return RegisterRequest{
		Email:    "staff@orionfest.in",
		Password: "secret123",
		FullName: "Staff Member",
		Role:     role,
	}
}

func TestRegisterRejectsSelfAssignedAdmin(t *testing.T) {
	r := newAuthRouter(NewJWTService("test-secret", 1))

	for _, role := range []string{"admin", "staff"} {
		w := postAuthRegister(t, r, privilegedRequest(role), "")
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s", role)
	}
}

func TestRegisterRejectsPrivilegedRoleFromNonAdmin(t *testing.T) {
	jwtService := NewJWTService("test-secret", 1)
	r := newAuthRouter(jwtService)

	token, err := jwtService.Generate(uuid.New(), "v@example.com", string(models.RoleVisitor))
	require.NoError(t, err)

	w := postAuthRegister(t, r, privilegedRequest("admin"), token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	r := newAuthRouter(NewJWTService("test-secret", 1))
	w := postAuthRegister(t, r, privilegedRequest("superuser"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
