package visitors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionfest/backend/internal/models"
	"github.com/orionfest/backend/internal/ticket"
)

type fakeStore struct {
	existing  *models.Visitor
	codeTaken bool
	createErr error
	created   []*models.Visitor
}

func (f *fakeStore) FindByEmailOrPhone(_ context.Context, _, _ string) (*models.Visitor, error) {
	return f.existing, nil
}

func (f *fakeStore) CodeExists(_ context.Context, _ string) (bool, error) {
	return f.codeTaken, nil
}

func (f *fakeStore) Create(_ context.Context, v *models.Visitor) error {
	if f.createErr != nil {
		return f.createErr
	}
	v.ID = uuid.New()
	f.created = append(f.created, v)
	return nil
}

type fakeAccounts struct {
	existing    *models.Account
	shadowErr   error
	shadowCalls int
}

func (f *fakeAccounts) FindByEmailOrPhone(_ context.Context, _, _ string) (*models.Account, error) {
	return f.existing, nil
}

func (f *fakeAccounts) CreateShadow(_ context.Context, email, fullName, _ string) (*models.Account, error) {
	f.shadowCalls++
	if f.shadowErr != nil {
		return nil, f.shadowErr
	}
	return &models.Account{ID: uuid.New(), Email: email, FullName: fullName}, nil
}

type fakeRenderer struct{ err error }

func (f *fakeRenderer) RenderTicket(v *models.Visitor) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<html>" + v.TicketCode + "</html>", nil
}

type fakeMailer struct {
	err   error
	calls int
}

func (f *fakeMailer) SendTicket(_ context.Context, _ *models.Visitor, _ string) error {
	f.calls++
	return f.err
}

type fakeNotifier struct{ seen []*models.Visitor }

func (f *fakeNotifier) VisitorRegistered(v *models.Visitor) { f.seen = append(f.seen, v) }

type deps struct {
	store    *fakeStore
	accounts *fakeAccounts
	renderer *fakeRenderer
	mailer   *fakeMailer
	notifier *fakeNotifier
}

func newTestService() (*Service, *deps) {
	d := &deps{
		store:    &fakeStore{},
		accounts: &fakeAccounts{},
		renderer: &fakeRenderer{},
		mailer:   &fakeMailer{},
		notifier: &fakeNotifier{},
	}
	return NewService(d.store, d.accounts, d.renderer, d.mailer, d.notifier, nil), d
}

func TestCheckDuplicateVisitorEmail(t *testing.T) {
	svc, d := newTestService()
	d.store.existing = &models.Visitor{Email: "a@b.c", Phone: "9845012367"}

	conflict, err := svc.CheckDuplicate(context.Background(), "a@b.c", "9111111112")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldEmail, conflict.Field)
	assert.Equal(t, "A visitor with this email already exists", conflict.Message)
}

func TestCheckDuplicateVisitorPhone(t *testing.T) {
	svc, d := newTestService()
	d.store.existing = &models.Visitor{Email: "other@b.c", Phone: "9845012367"}

	conflict, err := svc.CheckDuplicate(context.Background(), "a@b.c", "9845012367")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldPhone, conflict.Field)
}

func TestCheckDuplicateEmailWinsWhenBothCollide(t *testing.T) {
	svc, d := newTestService()
	d.store.existing = &models.Visitor{Email: "a@b.c", Phone: "9845012367"}

	conflict, err := svc.CheckDuplicate(context.Background(), "a@b.c", "9845012367")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldEmail, conflict.Field)
}

func TestCheckDuplicateAccountCollision(t *testing.T) {
	svc, d := newTestService()
	d.accounts.existing = &models.Account{Email: "a@b.c"}

	conflict, err := svc.CheckDuplicate(context.Background(), "a@b.c", "9845012367")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldEmail, conflict.Field)
	assert.Equal(t, "An account with this email already exists", conflict.Message)
}

func TestCheckDuplicateClean(t *testing.T) {
	svc, _ := newTestService()
	conflict, err := svc.CheckDuplicate(context.Background(), "a@b.c", "9845012367")
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestRegisterHappyPath(t *testing.T) {
	svc, d := newTestService()
	req := validRequest()
	req.Validate()

	result, err := svc.Register(context.Background(), &req, nil)
	require.NoError(t, err)

	require.Len(t, d.store.created, 1)
	v := d.store.created[0]
	assert.Regexp(t, ticket.Pattern, v.TicketCode)
	assert.Equal(t, "asha.rao@example.com", v.Email)

	assert.True(t, result.EmailOK)
	assert.Empty(t, result.EmailError)
	assert.Contains(t, result.TicketHTML, v.TicketCode)
	assert.Nil(t, result.AccountID)
	assert.Zero(t, d.accounts.shadowCalls)

	require.Len(t, d.notifier.seen, 1)
	assert.Equal(t, v, d.notifier.seen[0])
}

func TestRegisterWithProviderIdentityCreatesShadowAccount(t *testing.T) {
	svc, d := newTestService()
	req := validRequest()
	req.Validate()

	result, err := svc.Register(context.Background(), &req, &ProviderIdentity{
		Email: "asha.rao@example.com",
		Name:  "Asha Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.accounts.shadowCalls)
	assert.NotNil(t, result.AccountID)
}

func TestRegisterShadowAccountFailureIsBestEffort(t *testing.T) {
	svc, d := newTestService()
	d.accounts.shadowErr = errors.New("accounts down")
	req := validRequest()
	req.Validate()

	result, err := svc.Register(context.Background(), &req, &ProviderIdentity{Name: "Asha Rao"})
	require.NoError(t, err)
	assert.Nil(t, result.AccountID)
	require.Len(t, d.store.created, 1)
}

func TestRegisterEmailFailureIsBestEffort(t *testing.T) {
	svc, d := newTestService()
	d.mailer.err = errors.New("smtp timeout")
	req := validRequest()
	req.Validate()

	result, err := svc.Register(context.Background(), &req, nil)
	require.NoError(t, err)
	assert.False(t, result.EmailOK)
	assert.Equal(t, "smtp timeout", result.EmailError)
	require.Len(t, d.store.created, 1)
}

func TestRegisterDuplicateBlocks(t *testing.T) {
	svc, d := newTestService()
	d.store.existing = &models.Visitor{Email: "asha.rao@example.com"}
	req := validRequest()
	req.Validate()

	_, err := svc.Register(context.Background(), &req, nil)
	conflict := AsConflict(err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldEmail, conflict.Field)
	assert.Empty(t, d.store.created)
	assert.Zero(t, d.mailer.calls)
}

func TestRegisterTranslatesRaceToConflict(t *testing.T) {
	// A concurrent duplicate slips past the pre-check and hits the unique index.
	svc, d := newTestService()
	d.store.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "visitors_phone_key"}
	req := validRequest()
	req.Validate()

	_, err := svc.Register(context.Background(), &req, nil)
	conflict := AsConflict(err)
	require.NotNil(t, conflict)
	assert.Equal(t, FieldPhone, conflict.Field)
}

func TestRegisterExhaustedTicketCodes(t *testing.T) {
	svc, d := newTestService()
	d.store.codeTaken = true
	req := validRequest()
	req.Validate()

	_, err := svc.Register(context.Background(), &req, nil)
	assert.ErrorIs(t, err, ticket.ErrExhaustedRetries)
	assert.Empty(t, d.store.created)
}
