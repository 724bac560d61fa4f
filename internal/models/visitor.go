package models

import (
	"time"

	"github.com/google/uuid"
)

// Visitor is a fest visitor registration with its issued ticket code.
type Visitor struct {
	ID               uuid.UUID `json:"id"`
	FirstName        string    `json:"firstname"`
	LastName         string    `json:"lastname"`
	Email            string    `json:"email"`
	Phone            string    `json:"contact"`
	Age              int       `json:"age"`
	Organization     string    `json:"organization"`
	Industry         string    `json:"industry"`
	ProfileURL       string    `json:"profileUrl,omitempty"`
	TicketCode       string    `json:"ticketCode"`
	FootfallApproved bool      `json:"footfallApproved"`
	FootfallCount    int       `json:"footfallCount"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
