package visitors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orionfest/backend/internal/models"
)

const visitorColumns = `id, first_name, last_name, email, phone, age, organization, industry,
	COALESCE(profile_url,''), ticket_code, footfall_approved, footfall_count, created_at, updated_at`

// Repository handles visitor persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a visitors repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanVisitor(row pgx.Row) (*models.Visitor, error) {
	var v models.Visitor
	err := row.Scan(&v.ID, &v.FirstName, &v.LastName, &v.Email, &v.Phone, &v.Age,
		&v.Organization, &v.Industry, &v.ProfileURL, &v.TicketCode,
		&v.FootfallApproved, &v.FootfallCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByEmailOrPhone returns a visitor matching either identity field, or nil.
// When both fields would match different rows, the email match is returned first.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.Visitor, error) {
	q := `SELECT ` + visitorColumns + ` FROM visitors WHERE email = $1 OR phone = $2
		ORDER BY (email = $1) DESC LIMIT 1`
	v, err := scanVisitor(r.pool.QueryRow(ctx, q, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// CodeExists reports whether a ticket code is already persisted.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM visitors WHERE ticket_code = $1)`, code).Scan(&exists)
	return exists, err
}

// Create inserts a visitor. Unique-index violations surface as pgconn errors
// for conflictFromDBError to translate.
func (r *Repository) Create(ctx context.Context, v *models.Visitor) error {
	const q = `INSERT INTO visitors (first_name, last_name, email, phone, age, organization, industry, profile_url, ticket_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8,''), $9)
		RETURNING id, footfall_approved, footfall_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, v.FirstName, v.LastName, v.Email, v.Phone, v.Age,
		v.Organization, v.Industry, v.ProfileURL, v.TicketCode).
		Scan(&v.ID, &v.FootfallApproved, &v.FootfallCount, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID returns a visitor by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	q := `SELECT ` + visitorColumns + ` FROM visitors WHERE id = $1`
	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// List returns all visitors, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Visitor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+visitorColumns+` FROM visitors ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *v)
	}
	return list, rows.Err()
}

// ApproveFootfall marks a visitor's footfall approved and increments the counter.
func (r *Repository) ApproveFootfall(ctx context.Context, id uuid.UUID) (*models.Visitor, error) {
	q := `UPDATE visitors SET footfall_approved = TRUE, footfall_count = footfall_count + 1, updated_at = NOW()
		WHERE id = $1 RETURNING ` + visitorColumns
	v, err := scanVisitor(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}
