package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orionfest/backend/internal/models"
)

const accountColumns = `id, email, COALESCE(phone,''), COALESCE(password_hash,''), full_name, role, provider,
	COALESCE(image_url,''), created_at, updated_at`

// Repository handles account persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.Phone, &a.Password, &a.FullName, &a.Role,
		&a.Provider, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID returns an account by ID, or nil.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetByEmail returns an account by email, or nil.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// FindByEmailOrPhone returns an account matching either identity field, or nil.
// The email match wins when both fields would match different rows.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 OR phone = $2
		ORDER BY (email = $1) DESC LIMIT 1`
	a, err := scanAccount(r.pool.QueryRow(ctx, q, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Create inserts a local account with password.
func (r *Repository) Create(ctx context.Context, email, phone, passwordHash, fullName string, role models.Role) (*models.Account, error) {
	const q = `INSERT INTO accounts (email, phone, password_hash, full_name, role, provider)
		VALUES ($1, NULLIF($2,''), $3, $4, $5, 'local')
		RETURNING ` + accountColumns
	return scanAccount(r.pool.QueryRow(ctx, q, email, phone, passwordHash, fullName, string(role)))
}

// CreateShadow inserts a provider-linked account with no password. Used for
// later privilege elevation of provider-authenticated visitors. If the email
// is already taken the existing account is returned instead.
func (r *Repository) CreateShadow(ctx context.Context, email, fullName, imageURL string) (*models.Account, error) {
	const q = `INSERT INTO accounts (email, full_name, role, provider, image_url)
		VALUES ($1, $2, 'visitor', 'linkedin', NULLIF($3,''))
		ON CONFLICT (email) DO UPDATE SET image_url = COALESCE(EXCLUDED.image_url, accounts.image_url), updated_at = NOW()
		RETURNING ` + accountColumns
	return scanAccount(r.pool.QueryRow(ctx, q, email, fullName, imageURL))
}
