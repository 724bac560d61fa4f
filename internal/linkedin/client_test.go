package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("client-id", "client-secret", "http://localhost:8080/api/auth/linkedin/callback", nil)
	c.httpClient = srv.Client()
	c.authURL = srv.URL + "/oauth/v2/authorization"
	c.tokenURL = srv.URL + "/oauth/v2/accessToken"
	c.apiBase = srv.URL
	return c
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient("client-id", "client-secret", "http://localhost:8080/cb", nil)
	raw := c.AuthCodeURL("sess-42")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/cb", q.Get("redirect_uri"))
	assert.Equal(t, "sess-42", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "w_member_social")
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		_ = json.NewEncoder(w).Encode(Token{AccessToken: "tok-1", ExpiresIn: 3600})
	}))
	defer srv.Close()

	tok, err := newTestClient(srv).Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)
}

func TestExchangeRejectsEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Token{})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Exchange(context.Background(), "the-code")
	assert.Error(t, err)
}

func TestProfileOf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/userinfo", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(Profile{Sub: "u1", Name: "Asha Rao", Email: "a@b.c"})
	}))
	defer srv.Close()

	p, err := newTestClient(srv).ProfileOf(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.Sub)
	assert.Equal(t, "Asha Rao", p.Name)
}

func TestProfileOfUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ProfileOf(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/userinfo":
			_ = json.NewEncoder(w).Encode(Profile{Sub: "u1"})
		case "/v2/ugcPosts":
			assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
			var req ugcShareRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "urn:li:person:u1", req.Author)
			assert.Equal(t, "PUBLISHED", req.LifecycleState)
			assert.Contains(t, string(req.SpecificContent), "I'm attending")
			w.Header().Set("X-Restli-Id", "urn:li:share:99")
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	result, err := newTestClient(srv).Post(context.Background(), "tok-1", PostInput{
		Comment:  "I'm attending Orion Fest 2026!",
		ShareURL: "https://orionfest.in",
		Title:    "Orion Fest 2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:99", result.PostID)
}

func TestPostUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Post(context.Background(), "expired", PostInput{Comment: "x"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPostWithoutToken(t *testing.T) {
	c := NewClient("client-id", "client-secret", "http://localhost/cb", nil)
	_, err := c.Post(context.Background(), "", PostInput{Comment: "x"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
