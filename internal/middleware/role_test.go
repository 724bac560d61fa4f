package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfest/backend/internal/auth"
	"github.com/orionfest/backend/internal/models"
)

func newProtectedRouter(jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/stats",
		JWT(jwtService),
		RequireRole(string(models.RoleAdmin), string(models.RoleStaff)),
		func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) },
	)
	return r
}

func getStats(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminGateRejectsMissingToken(t *testing.T) {
	r := newProtectedRouter(auth.NewJWTService("test-secret", 1))
	w := getStats(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGateRejectsInvalidToken(t *testing.T) {
	r := newProtectedRouter(auth.NewJWTService("test-secret", 1))
	w := getStats(r, "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminGateRejectsVisitorRole(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	r := newProtectedRouter(jwtService)

	token, err := jwtService.Generate(uuid.New(), "v@example.com", string(models.RoleVisitor))
	require.NoError(t, err)

	w := getStats(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminGateAllowsAdminAndStaff(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 1)
	r := newProtectedRouter(jwtService)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleStaff} {
		token, err := jwtService.Generate(uuid.New(), "a@example.com", string(role))
		require.NoError(t, err)

		w := getStats(r, token)
		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}

func TestAdminGateAcceptsTokenQueryParam(t *testing.T) {
	// WebSocket upgrades cannot set headers; the token rides a query param.
	jwtService := auth.NewJWTService("test-secret", 1)
	r := newProtectedRouter(jwtService)

	token, err := jwtService.Generate(uuid.New(), "a@example.com", string(models.RoleAdmin))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGateRejectsWrongSecret(t *testing.T) {
	r := newProtectedRouter(auth.NewJWTService("test-secret", 1))

	forged, err := auth.NewJWTService("other-secret", 1).Generate(uuid.New(), "a@example.com", string(models.RoleAdmin))
	require.NoError(t, err)

	w := getStats(r, forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
