package visitors

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfest/backend/internal/middleware"
	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/ticket"
)

type fakeIdentities struct {
	ident *ProviderIdentity
}

func (f *fakeIdentities) Identity(_ context.Context, _ string) (*ProviderIdentity, bool) {
	return f.ident, f.ident != nil
}

type fakeBinder struct {
	sessionID string
	visitor   *models.Visitor
}

func (f *fakeBinder) TicketIssued(_ context.Context, sessionID string, v *models.Visitor) error {
	f.sessionID = sessionID
	f.visitor = v
	return nil
}

func newRegisterRouter(svc *Service, identities IdentityResolver, binder TicketBinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextSessionID, "sess-1") })
	h := NewHandler(svc, nil, identities, binder, nil)
	r.POST("/api/register", h.Register)
	return r
}

func postRegister(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpointSuccess(t *testing.T) {
	svc, _ := newTestService()
	binder := &fakeBinder{}
	r := newRegisterRouter(svc, &fakeIdentities{}, binder)

	w := postRegister(t, r, validRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TicketCode   string `json:"ticketCode"`
			TicketHTML   string `json:"ticketHtml"`
			LinkedInAuth bool   `json:"linkedInAuth"`
			Email        struct {
				OK      bool   `json:"ok"`
				Address string `json:"address"`
			} `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, ticket.Pattern, resp.Data.TicketCode)
	assert.Contains(t, resp.Data.TicketHTML, resp.Data.TicketCode)
	assert.False(t, resp.Data.LinkedInAuth)
	assert.True(t, resp.Data.Email.OK)
	assert.Equal(t, "asha.rao@example.com", resp.Data.Email.Address)

	// The issued ticket is bound to the share session.
	assert.Equal(t, "sess-1", binder.sessionID)
	require.NotNil(t, binder.visitor)
	assert.Equal(t, resp.Data.TicketCode, binder.visitor.TicketCode)
}

func TestRegisterEndpointFieldErrors(t *testing.T) {
	svc, _ := newTestService()
	r := newRegisterRouter(svc, &fakeIdentities{}, &fakeBinder{})

	req := validRequest()
	req.Phone = "9999999999"
	req.Age = 7
	w := postRegister(t, r, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Fields  map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Fields, "contact")
	assert.Contains(t, resp.Fields, "age")
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	svc, d := newTestService()
	d.store.existing = &models.Visitor{Email: "asha.rao@example.com"}
	r := newRegisterRouter(svc, &fakeIdentities{}, &fakeBinder{})

	w := postRegister(t, r, validRequest())
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "A visitor with this email already exists")
}

func TestRegisterEndpointExhaustedCodes(t *testing.T) {
	svc, d := newTestService()
	d.store.codeTaken = true
	r := newRegisterRouter(svc, &fakeIdentities{}, &fakeBinder{})

	w := postRegister(t, r, validRequest())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRegisterEndpointWithProviderIdentity(t *testing.T) {
	svc, d := newTestService()
	identities := &fakeIdentities{ident: &ProviderIdentity{Email: "asha.rao@example.com", Name: "Asha Rao"}}
	r := newRegisterRouter(svc, identities, &fakeBinder{})

	w := postRegister(t, r, validRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			LinkedInAuth bool    `json:"linkedInAuth"`
			UserID       *string `json:"userId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.LinkedInAuth)
	require.NotNil(t, resp.Data.UserID)
	assert.Equal(t, 1, d.accounts.shadowCalls)
}
