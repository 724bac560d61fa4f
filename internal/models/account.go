package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an account role in the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleVisitor Role = "visitor"
)

// Provider identifies how an account was created.
const (
	ProviderLocal    = "local"
	ProviderLinkedIn = "linkedin"
)

// Account is a platform account. Accounts are created either through the
// authentication-first registration path (local, with password) or as a
// shadow record for a provider-authenticated visitor (no password).
type Account struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"contact,omitempty"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Provider  string    `json:"provider"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountPublic is Account without sensitive fields for API responses.
type AccountPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Provider  string    `json:"provider"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts Account to AccountPublic.
func (a *Account) ToPublic() AccountPublic {
	return AccountPublic{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		Provider:  a.Provider,
		ImageURL:  a.ImageURL,
		CreatedAt: a.CreatedAt,
	}
}
