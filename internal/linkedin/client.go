// Package linkedin integrates the LinkedIn OAuth sign-in and UGC share post APIs.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnauthenticated signals an absent or expired access token; the caller
// should trigger a fresh provider sign-in rather than treat it as terminal.
var ErrUnauthenticated = errors.New("linkedin: unauthenticated")

const (
	defaultAuthURL  = "https://www.linkedin.com/oauth/v2/authorization"
	defaultTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
	defaultAPIBase  = "https://api.linkedin.com"

	requestTimeout = 15 * time.Second
)

// Token is the result of an authorization-code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Profile is the authenticated member's identity from the userinfo endpoint.
type Profile struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// PostInput describes one share post.
type PostInput struct {
	Comment     string `json:"comment"`
	ShareURL    string `json:"shareUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// PostResult is the created post's metadata.
type PostResult struct {
	PostID string `json:"postId"`
}

// Client calls the LinkedIn OAuth and share APIs.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	apiBase      string
	logger       *zap.Logger
}

// NewClient creates a LinkedIn API client.
func NewClient(clientID, clientSecret, redirectURI string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:   &http.Client{Timeout: requestTimeout},
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      defaultAuthURL,
		tokenURL:     defaultTokenURL,
		apiBase:      defaultAPIBase,
		logger:       logger,
	}
}

// AuthCodeURL builds the provider sign-in URL for the given state.
func (c *Client) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("state", state)
	q.Set("scope", "openid profile email w_member_social")
	return c.authURL + "?" + q.Encode()
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange code: status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("exchange code: empty access token")
	}
	return &tok, nil
}

// ProfileOf fetches the authenticated member's identity.
func (c *Client) ProfileOf(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile: status %d: %s", resp.StatusCode, readBody(resp.Body))
	}
	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

// ugcShareRequest is the wire shape of a UGC post.
type ugcShareRequest struct {
	Author          string          `json:"author"`
	LifecycleState  string          `json:"lifecycleState"`
	SpecificContent json.RawMessage `json:"specificContent"`
	Visibility      map[string]string `json:"visibility"`
}

// Post creates one share post on behalf of the member. A 401 from the API
// maps to ErrUnauthenticated so the caller can restart provider sign-in.
func (c *Client) Post(ctx context.Context, accessToken string, in PostInput) (*PostResult, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := c.ProfileOf(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	media := []map[string]interface{}{}
	category := "ARTICLE"
	content := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": in.Comment},
		"shareMediaCategory": category,
	}
	entry := map[string]interface{}{
		"status":      "READY",
		"originalUrl": in.ShareURL,
		"title":       map[string]string{"text": in.Title},
		"description": map[string]string{"text": in.Description},
	}
	if in.ImageURL != "" {
		entry["thumbnails"] = []map[string]string{{"url": in.ImageURL}}
	}
	media = append(media, entry)
	content["media"] = media

	specific, err := json.Marshal(map[string]interface{}{
		"com.linkedin.ugc.ShareContent": content,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal share content: %w", err)
	}
	body, err := json.Marshal(ugcShareRequest{
		Author:          "urn:li:person:" + profile.Sub,
		LifecycleState:  "PUBLISHED",
		SpecificContent: specific,
		Visibility:      map[string]string{"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create post: status %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	postID := resp.Header.Get("X-Restli-Id")
	if postID == "" {
		var out struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		postID = out.ID
	}
	c.logger.Info("linkedin post created", zap.String("post_id", postID))
	return &PostResult{PostID: postID}, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
