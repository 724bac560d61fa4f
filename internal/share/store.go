package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orionfest/backend/internal/linkedin"
)

const (
	sessionKeyPrefix = "share:sess:"
	latchKeyPrefix   = "share:posted:"
	sessionTTL       = 24 * time.Hour
)

// Identity is the provider identity bound to a session after sign-in.
type Identity struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Session is the per-browser-session share state. It survives the provider
// redirect because it lives server-side keyed by the session cookie.
type Session struct {
	ID                 string     `json:"id"`
	State              State      `json:"state"`
	VisitorID          *uuid.UUID `json:"visitor_id,omitempty"`
	TicketCode         string     `json:"ticket_code,omitempty"`
	ShareAfterLinkedIn bool       `json:"share_after_linkedin"`
	Posted             bool       `json:"posted"`
	LastMessage        string     `json:"last_message,omitempty"`
	LinkedIn           *Identity  `json:"linkedin,omitempty"`
}

// SessionStore persists share sessions and owns the one-shot post latch.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	// AcquireLatch atomically claims the one automatic share for the session.
	// Exactly one of two concurrent callers gets true.
	AcquireLatch(ctx context.Context, id string) (bool, error)
	// ReleaseLatch frees the latch after a failed post so a later automatic
	// trigger may fire again.
	ReleaseLatch(ctx context.Context, id string) error
}

// RedisStore is the Redis-backed SessionStore.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a session store on the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads the session, returning a fresh Idle session when none exists.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return &Session{ID: id, State: StateIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Save writes the session with a sliding TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// AcquireLatch claims the automatic share via SETNX.
func (r *RedisStore) AcquireLatch(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.SetNX(ctx, latchKeyPrefix+id, 1, sessionTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire latch: %w", err)
	}
	return ok, nil
}

// ReleaseLatch frees the latch.
func (r *RedisStore) ReleaseLatch(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, latchKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("release latch: %w", err)
	}
	return nil
}

// SaveIdentity binds the provider identity and token to the session.
// Implements the linkedin handler's session contract.
func (r *RedisStore) SaveIdentity(ctx context.Context, sessionID string, p linkedin.Profile, accessToken string) error {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.LinkedIn = &Identity{
		AccessToken: accessToken,
		Email:       p.Email,
		Name:        p.Name,
		ImageURL:    p.Picture,
	}
	return r.Save(ctx, s)
}

// AccessToken returns the session's provider token, or "".
func (r *RedisStore) AccessToken(ctx context.Context, sessionID string) (string, error) {
	s, err := r.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if s.LinkedIn == nil {
		return "", nil
	}
	return s.LinkedIn.AccessToken, nil
}
