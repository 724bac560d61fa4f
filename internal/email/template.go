// Package email renders and delivers ticket confirmation mail.
package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/orionfest/backend/config"
	"github.com/orionfest/backend/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders the ticket confirmation document. The same document is
// returned in the registration response and sent as the email body.
type Renderer struct {
	tmpl  *template.Template
	event config.EventConfig
}

// NewRenderer parses the embedded ticket template.
func NewRenderer(event config.EventConfig) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/ticket.html")
	if err != nil {
		return nil, fmt.Errorf("parse ticket template: %w", err)
	}
	return &Renderer{tmpl: tmpl, event: event}, nil
}

type ticketData struct {
	EventName  string
	EventDates string
	EventVenue string
	TicketCode string
	FullName   string
	Email      string
	Phone      string
}

// RenderTicket renders the confirmation document for a visitor.
func (r *Renderer) RenderTicket(v *models.Visitor) (string, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, ticketData{
		EventName:  r.event.Name,
		EventDates: r.event.Dates,
		EventVenue: r.event.Venue,
		TicketCode: v.TicketCode,
		FullName:   v.FirstName + " " + v.LastName,
		Email:      v.Email,
		Phone:      v.Phone,
	})
	if err != nil {
		return "", fmt.Errorf("render ticket: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the confirmation email subject for a visitor.
func (r *Renderer) Subject(v *models.Visitor) string {
	return fmt.Sprintf("Your %s ticket: %s", r.event.Name, v.TicketCode)
}
