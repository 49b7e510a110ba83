package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

// Store is the aggregate read contract. A nil manager means system-wide.
type Store interface {
	CountEventsByStatus(ctx context.Context, managerID *uuid.UUID) (map[models.EventStatus]int, error)
	CountPendingModifications(ctx context.Context, managerID *uuid.UUID) (int, error)
	SponsorshipTotals(ctx context.Context, managerID *uuid.UUID) (*models.SponsorshipTotals, error)
	CountAssignmentsByStatus(ctx context.Context, managerID uuid.UUID) (map[models.AssignmentStatus]int, error)
	CountProfilesByRole(ctx context.Context) (map[models.Role]int, error)
	CountPendingVerifications(ctx context.Context) (int, error)
	CountPendingMasterRequests(ctx context.Context) (int, error)
}

// Repository runs aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an analytics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func groupCount[K ~string](ctx context.Context, pool *pgxpool.Pool, q string, args ...any) (map[K]int, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	out := make(map[K]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, apperr.Upstream(err)
		}
		out[K(key)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return out, nil
}

func (r *Repository) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, apperr.Upstream(err)
	}
	return n, nil
}

func (r *Repository) CountEventsByStatus(ctx context.Context, managerID *uuid.UUID) (map[models.EventStatus]int, error) {
	return groupCount[models.EventStatus](ctx, r.pool,
		`SELECT status, COUNT(*) FROM events WHERE $1::uuid IS NULL OR manager_id = $1 GROUP BY status`, managerID)
}

func (r *Repository) CountPendingModifications(ctx context.Context, managerID *uuid.UUID) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM modification_requests m JOIN events e ON e.id = m.event_id
		WHERE m.status = 'pending' AND ($1::uuid IS NULL OR e.manager_id = $1)`, managerID)
}

func (r *Repository) SponsorshipTotals(ctx context.Context, managerID *uuid.UUID) (*models.SponsorshipTotals, error) {
	byStatus, err := groupCount[models.SponsorshipStatus](ctx, r.pool,
		`SELECT s.status, COUNT(*) FROM sponsorships s JOIN events e ON e.id = s.event_id
		 WHERE $1::uuid IS NULL OR e.manager_id = $1 GROUP BY s.status`, managerID)
	if err != nil {
		return nil, err
	}
	totals := &models.SponsorshipTotals{ByStatus: byStatus}
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(s.amount), 0)::float8 FROM sponsorships s JOIN events e ON e.id = s.event_id
		WHERE s.status = 'accepted' AND ($1::uuid IS NULL OR e.manager_id = $1)`, managerID).Scan(&totals.AcceptedAmount)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return totals, nil
}

func (r *Repository) CountAssignmentsByStatus(ctx context.Context, managerID uuid.UUID) (map[models.AssignmentStatus]int, error) {
	return groupCount[models.AssignmentStatus](ctx, r.pool,
		`SELECT a.status, COUNT(*) FROM assignments a JOIN events e ON e.id = a.event_id
		 WHERE e.manager_id = $1 GROUP BY a.status`, managerID)
}

func (r *Repository) CountProfilesByRole(ctx context.Context) (map[models.Role]int, error) {
	return groupCount[models.Role](ctx, r.pool, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
}

func (r *Repository) CountPendingVerifications(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM profiles WHERE verification_status = 'pending'`)
}

func (r *Repository) CountPendingMasterRequests(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM master_data_requests WHERE status = 'pending'`)
}
