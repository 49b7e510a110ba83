package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/database"
)

// Store is the profile persistence contract.
type Store interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, p *models.Profile) error
	ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error)
	// UpdateVerification moves a profile from one status to another and fails
	// with InvalidState when the stored status is no longer from.
	UpdateVerification(ctx context.Context, id uuid.UUID, from, to models.VerificationStatus) error
}

// Repository handles profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, full_name, role, verification_status, category_id, COALESCE(company_name,''), created_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	var role, status string
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &role, &status, &p.CategoryID, &p.CompanyName, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	p.VerificationStatus = models.VerificationStatus(status)
	return &p, nil
}

// GetProfile returns a profile by ID.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return p, nil
}

// CreateProfile inserts a profile keyed by the identity provider subject.
func (r *Repository) CreateProfile(ctx context.Context, p *models.Profile) error {
	const q = `INSERT INTO profiles (id, email, full_name, role, verification_status, category_id, company_name)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))
		RETURNING created_at`
	err := r.pool.QueryRow(ctx, q, p.ID, p.Email, p.FullName, string(p.Role), string(p.VerificationStatus), p.CategoryID, p.CompanyName).
		Scan(&p.CreatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("profile already exists")
	}
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// ListProfiles returns profiles matching f ordered by name.
func (r *Repository) ListProfiles(ctx context.Context, f models.ProfileFilter) ([]models.Profile, error) {
	var conds []string
	var args []any
	if len(f.Roles) > 0 {
		roles := make([]string, len(f.Roles))
		for i, role := range f.Roles {
			roles[i] = string(role)
		}
		args = append(args, roles)
		conds = append(conds, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("verification_status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	q := `SELECT ` + profileColumns + ` FROM profiles`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	rows, err := r.pool.Query(ctx, q+" ORDER BY full_name, email", args...)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

// UpdateVerification sets verification_status if it still equals from.
func (r *Repository) UpdateVerification(ctx context.Context, id uuid.UUID, from, to models.VerificationStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET verification_status = $1 WHERE id = $2 AND verification_status = $3`,
		string(to), id, string(from))
	if err != nil {
		return apperr.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("verification status changed concurrently")
	}
	return nil
}
