package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfest/backend/config"
	"github.com/orionfest/backend/internal/models"
)

func testEvent() config.EventConfig {
	return config.EventConfig{
		Name:  "Orion Fest 2026",
		Dates: "12-14 March 2026",
		Venue: "Orion Institute of Technology, Main Campus",
	}
}

func TestRenderTicket(t *testing.T) {
	r, err := NewRenderer(testEvent())
	require.NoError(t, err)

	v := &models.Visitor{
		FirstName:  "Asha",
		LastName:   "Rao",
		Email:      "asha.rao@example.com",
		Phone:      "9845012367",
		TicketCode: "KQX481",
	}
	html, err := r.RenderTicket(v)
	require.NoError(t, err)

	assert.Contains(t, html, "Orion Fest 2026")
	assert.Contains(t, html, "KQX481")
	assert.Contains(t, html, "Asha Rao")
	assert.Contains(t, html, "asha.rao@example.com")
	assert.Contains(t, html, "12-14 March 2026")
}

func TestRenderTicketEscapesInput(t *testing.T) {
	r, err := NewRenderer(testEvent())
	require.NoError(t, err)

	v := &models.Visitor{
		FirstName:  "<script>alert(1)</script>",
		LastName:   "Rao",
		TicketCode: "KQX481",
	}
	html, err := r.RenderTicket(v)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestSubject(t *testing.T) {
	r, err := NewRenderer(testEvent())
	require.NoError(t, err)

	v := &models.Visitor{TicketCode: "KQX481"}
	assert.Equal(t, "Your Orion Fest 2026 ticket: KQX481", r.Subject(v))
}
