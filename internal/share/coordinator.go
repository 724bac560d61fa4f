package share

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orionfest/backend/config"
	"github.com/orionfest/backend/internal/linkedin"
	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/visitors"
)

// Choice values for the pre-registration share prompt.
const (
	ChoiceAuthAndShare = "auth_and_share"
	ChoiceSkip         = "skip"
	ChoiceCancel       = "cancel"
)

// Poster publishes one share post on behalf of a member.
type Poster interface {
	Post(ctx context.Context, accessToken string, in linkedin.PostInput) (*linkedin.PostResult, error)
}

// ImageSource resolves the share image URL, when configured.
type ImageSource interface {
	ShareImageURL(ctx context.Context) (string, error)
}

// Outcome reports the result of an automatic or manual share attempt.
type Outcome struct {
	Session   *Session `json:"session"`
	Fired     bool     `json:"fired"`
	Shared    bool     `json:"shared"`
	NeedsAuth bool     `json:"needsAuth"`
	Message   string   `json:"message,omitempty"`
}

// Coordinator drives the deferred share state machine for each session.
type Coordinator struct {
	store  SessionStore
	poster Poster
	images ImageSource
	event  config.EventConfig
	// shareURL is the landing page embedded in posts.
	shareURL string
	logger   *zap.Logger
}

// NewCoordinator creates the share coordinator. images may be nil.
func NewCoordinator(store SessionStore, poster Poster, images ImageSource, event config.EventConfig, shareURL string, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: store, poster: poster, images: images, event: event, shareURL: shareURL, logger: logger}
}

// Choice records the user's decision at the pre-registration prompt.
func (co *Coordinator) Choice(ctx context.Context, sessionID, choice string) (*Session, error) {
	s, err := co.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// The client validates before prompting; catch the session up when the
	// server has not yet seen those steps.
	if s.State == StateIdle {
		_ = s.Transition(EventValidated)
	}
	if s.State == StateValidated {
		_ = s.Transition(EventPromptChoice)
	}
	if s.State != StateAwaitingChoice {
		return nil, fmt.Errorf("share: choice not available in state %s", s.State)
	}

	switch choice {
	case ChoiceAuthAndShare:
		// Registration happens before the provider redirect so the user is
		// never asked to refill the form after the round trip. The durable
		// flag makes the post-redirect auto-share resumable.
		s.ShareAfterLinkedIn = true
	case ChoiceSkip:
		s.ShareAfterLinkedIn = false
	case ChoiceCancel:
		s.ShareAfterLinkedIn = false
		if err := s.Transition(EventValidated); err != nil {
			return nil, err
		}
		return s, co.store.Save(ctx, s)
	default:
		return nil, fmt.Errorf("share: unknown choice %q", choice)
	}
	return s, co.store.Save(ctx, s)
}

// TicketIssued binds a persisted registration to the session and advances the
// machine past Registered. Implements the visitors handler's binder contract.
func (co *Coordinator) TicketIssued(ctx context.Context, sessionID string, v *models.Visitor) error {
	s, err := co.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.State == StateIdle {
		_ = s.Transition(EventValidated)
	}
	if s.State == StateValidated || s.State == StateAwaitingChoice {
		_ = s.Transition(EventSubmit)
	}
	if s.State == StateRegistering {
		if err := s.Transition(EventRegistered); err != nil {
			return err
		}
	}
	id := v.ID
	s.VisitorID = &id
	s.TicketCode = v.TicketCode
	if s.State == StateRegistered && !s.ShareAfterLinkedIn && s.LinkedIn == nil {
		// No share requested and no auth to share with; terminal.
		_ = s.Transition(EventFinish)
	}
	return co.store.Save(ctx, s)
}

// Identity reports the session's provider identity for the registration
// workflow. Implements the visitors handler's resolver contract.
func (co *Coordinator) Identity(ctx context.Context, sessionID string) (*visitors.ProviderIdentity, bool) {
	s, err := co.store.Get(ctx, sessionID)
	if err != nil || s.LinkedIn == nil {
		return nil, false
	}
	return &visitors.ProviderIdentity{
		Email:    s.LinkedIn.Email,
		Name:     s.LinkedIn.Name,
		ImageURL: s.LinkedIn.ImageURL,
	}, true
}

// Resume fires the automatic share when the session is authenticated, holds a
// ticket, and has not posted yet. The latch is claimed atomically before the
// outbound call, so concurrent triggers produce at most one post.
func (co *Coordinator) Resume(ctx context.Context, sessionID string) (*Outcome, error) {
	s, err := co.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.TicketCode == "" || s.LinkedIn == nil || s.Posted {
		return &Outcome{Session: s, Shared: s.Posted}, nil
	}

	acquired, err := co.store.AcquireLatch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Another trigger won the race; report current state untouched.
		return &Outcome{Session: s, Shared: s.Posted}, nil
	}

	return co.fire(ctx, s, true)
}

// Retry performs a user-initiated share attempt, independent of the
// automatic one-shot latch.
func (co *Coordinator) Retry(ctx context.Context, sessionID string) (*Outcome, error) {
	s, err := co.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.TicketCode == "" {
		return nil, errors.New("share: no registration for this session")
	}
	if s.LinkedIn == nil {
		return &Outcome{Session: s, NeedsAuth: true, Message: "sign in with LinkedIn to share"}, nil
	}
	return co.fire(ctx, s, false)
}

func (co *Coordinator) fire(ctx context.Context, s *Session, automatic bool) (*Outcome, error) {
	if s.State == StateRegistered || s.State == StateShareFailed || s.State == StateShared || s.State == StateDone {
		_ = s.Transition(EventShareTrigger)
	}
	if err := s.Transition(EventShareStart); err != nil {
		if automatic {
			// The latch was claimed before this point; keep it claimable.
			if relErr := co.store.ReleaseLatch(ctx, s.ID); relErr != nil {
				co.logger.Warn("release latch failed", zap.Error(relErr))
			}
		}
		return nil, err
	}
	_ = co.store.Save(ctx, s)

	in := linkedin.PostInput{
		Comment:     fmt.Sprintf("I'm attending %s! My ticket code is %s. See you there!", co.event.Name, s.TicketCode),
		ShareURL:    co.shareURL,
		Title:       co.event.Name,
		Description: fmt.Sprintf("Join me at %s, %s, %s.", co.event.Name, co.event.Dates, co.event.Venue),
	}
	if co.images != nil {
		if url, err := co.images.ShareImageURL(ctx); err == nil {
			in.ImageURL = url
		} else {
			co.logger.Warn("share image resolve failed", zap.Error(err))
		}
	}

	result, err := co.poster.Post(ctx, s.LinkedIn.AccessToken, in)
	if err != nil {
		if automatic {
			// Failed posts free the latch so a later automatic trigger can run.
			if relErr := co.store.ReleaseLatch(ctx, s.ID); relErr != nil {
				co.logger.Warn("release latch failed", zap.Error(relErr))
			}
		}
		_ = s.Transition(EventShareError)
		out := &Outcome{Session: s, Fired: true, Message: "sharing failed, you can retry"}
		if errors.Is(err, linkedin.ErrUnauthenticated) {
			// Expired token: drop it and ask for a fresh sign-in.
			s.LinkedIn = nil
			out.NeedsAuth = true
			out.Message = "LinkedIn session expired, please sign in again"
		}
		s.LastMessage = out.Message
		if saveErr := co.store.Save(ctx, s); saveErr != nil {
			co.logger.Warn("save session failed", zap.Error(saveErr))
		}
		co.logger.Warn("share post failed", zap.Error(err), zap.String("session_id", s.ID))
		return out, nil
	}

	if !automatic {
		// Manual success also blocks any future automatic repeat.
		_, _ = co.store.AcquireLatch(ctx, s.ID)
	}
	s.Posted = true
	s.LastMessage = "shared on LinkedIn"
	_ = s.Transition(EventShareSent)
	if err := co.store.Save(ctx, s); err != nil {
		co.logger.Warn("save session failed", zap.Error(err))
	}
	co.logger.Info("share posted",
		zap.String("session_id", s.ID), zap.String("post_id", result.PostID), zap.Bool("automatic", automatic))
	return &Outcome{Session: s, Fired: true, Shared: true, Message: s.LastMessage}, nil
}
