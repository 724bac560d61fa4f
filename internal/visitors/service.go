package visitors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/ticket"
)

// Store is the visitor persistence surface the service needs.
type Store interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.Visitor, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, v *models.Visitor) error
}

// AccountStore looks up and creates accounts (the authentication-first collection).
type AccountStore interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.Account, error)
	CreateShadow(ctx context.Context, email, fullName, imageURL string) (*models.Account, error)
}

// TicketRenderer renders the ticket confirmation document.
type TicketRenderer interface {
	RenderTicket(v *models.Visitor) (string, error)
}

// Mailer delivers the rendered ticket to the registrant, best-effort.
type Mailer interface {
	SendTicket(ctx context.Context, v *models.Visitor, html string) error
}

// Notifier announces a new registration (live admin feed). May be nil.
type Notifier interface {
	VisitorRegistered(v *models.Visitor)
}

// ProviderIdentity describes the authenticated LinkedIn session, when present.
type ProviderIdentity struct {
	Email    string
	Name     string
	ImageURL string
}

// RegisterResult is the outcome of a successful registration. Email delivery
// and shadow-account creation are best-effort and reported, not guaranteed.
type RegisterResult struct {
	Visitor    *models.Visitor
	TicketHTML string
	AccountID  *uuid.UUID
	EmailOK    bool
	EmailError string
}

// Service implements the visitor registration workflow.
type Service struct {
	store    Store
	accounts AccountStore
	renderer TicketRenderer
	mailer   Mailer
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates the registration service.
func NewService(store Store, accounts AccountStore, renderer TicketRenderer, mailer Mailer, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, accounts: accounts, renderer: renderer, mailer: mailer, notifier: notifier, logger: logger}
}

// CheckDuplicate looks for an existing visitor or account colliding on email
// or phone. Email takes priority in the reported field when both collide.
func (s *Service) CheckDuplicate(ctx context.Context, email, phone string) (*ConflictError, error) {
	v, err := s.store.FindByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("visitor lookup: %w", err)
	}
	if v != nil {
		if v.Email == email {
			return &ConflictError{Field: FieldEmail, Message: "A visitor with this email already exists"}, nil
		}
		return &ConflictError{Field: FieldPhone, Message: "A visitor with this contact number already exists"}, nil
	}
	a, err := s.accounts.FindByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	if a != nil {
		if a.Email == email {
			return &ConflictError{Field: FieldEmail, Message: "An account with this email already exists"}, nil
		}
		return &ConflictError{Field: FieldPhone, Message: "An account with this contact number already exists"}, nil
	}
	return nil, nil
}

// Register runs the full workflow: duplicate check, ticket code generation,
// persistence, best-effort shadow account, ticket render, best-effort email.
// The request must already have passed Validate.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, ident *ProviderIdentity) (*RegisterResult, error) {
	if conflict, err := s.CheckDuplicate(ctx, req.Email, req.Phone); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, conflict
	}

	code, err := ticket.Generate(ctx, s.store.CodeExists)
	if err != nil {
		return nil, err
	}

	v := &models.Visitor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Age:          req.Age,
		Organization: req.Organization,
		Industry:     req.Industry,
		ProfileURL:   req.ProfileURL,
		TicketCode:   code,
	}
	if err := s.store.Create(ctx, v); err != nil {
		// A concurrent duplicate can pass the pre-check and trip the unique
		// index here; translate it to the same field-specific conflict.
		if conflict := conflictFromDBError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("persist visitor: %w", err)
	}

	result := &RegisterResult{Visitor: v}

	if ident != nil {
		name := ident.Name
		if name == "" {
			name = v.FirstName + " " + v.LastName
		}
		acct, err := s.accounts.CreateShadow(ctx, v.Email, name, ident.ImageURL)
		if err != nil {
			// Best-effort: the shadow record never fails the registration.
			s.logger.Warn("shadow account creation failed",
				zap.Error(err), zap.String("visitor_id", v.ID.String()))
		} else {
			result.AccountID = &acct.ID
		}
	}

	html, err := s.renderer.RenderTicket(v)
	if err != nil {
		s.logger.Error("ticket render failed", zap.Error(err), zap.String("visitor_id", v.ID.String()))
	}
	result.TicketHTML = html

	if html != "" {
		if err := s.mailer.SendTicket(ctx, v, html); err != nil {
			s.logger.Warn("ticket email failed", zap.Error(err), zap.String("visitor_id", v.ID.String()))
			result.EmailError = err.Error()
		} else {
			result.EmailOK = true
		}
	}

	if s.notifier != nil {
		s.notifier.VisitorRegistered(v)
	}
	return result, nil
}
