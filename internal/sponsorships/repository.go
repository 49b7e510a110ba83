package sponsorships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/database"
)

// Store is the sponsorship persistence contract. Every write also records a
// revision holding the values as written, so the first revision is the
// original offer and earlier offers stay visible.
type Store interface {
	CreateSponsorship(ctx context.Context, s *models.Sponsorship, actor uuid.UUID) error
	GetSponsorship(ctx context.Context, id uuid.UUID) (*models.Sponsorship, error)
	// SaveSponsorship overwrites amount, status and notes when the stored
	// status still equals expected, and fails with InvalidState otherwise.
	SaveSponsorship(ctx context.Context, s *models.Sponsorship, expected models.SponsorshipStatus, actor uuid.UUID) error
	ListSponsorshipsForManager(ctx context.Context, managerID uuid.UUID) ([]models.SponsorshipView, error)
	ListSponsorshipsForSponsor(ctx context.Context, sponsorID uuid.UUID) ([]models.SponsorshipView, error)
	ListSponsorshipRevisions(ctx context.Context, sponsorshipID uuid.UUID) ([]models.SponsorshipRevision, error)
}

// Repository handles sponsorships and their revisions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sponsorship repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sponsorshipColumns = `s.id, s.event_id, s.sponsor_id, s.amount, s.status, s.manager_note, s.sponsor_note, s.created_at, s.updated_at`

func scanSponsorship(row pgx.Row, extra ...any) (*models.Sponsorship, error) {
	var s models.Sponsorship
	var status string
	dest := append([]any{&s.ID, &s.EventID, &s.SponsorID, &s.Amount, &status, &s.ManagerNote, &s.SponsorNote, &s.CreatedAt, &s.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Status = models.SponsorshipStatus(status)
	return &s, nil
}

func insertRevision(ctx context.Context, q database.Querier, s *models.Sponsorship, actor uuid.UUID) error {
	_, err := q.Exec(ctx, `INSERT INTO sponsorship_revisions (sponsorship_id, amount, status, manager_note, sponsor_note, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6)`, s.ID, s.Amount, string(s.Status), s.ManagerNote, s.SponsorNote, actor)
	return err
}

func (r *Repository) CreateSponsorship(ctx context.Context, s *models.Sponsorship, actor uuid.UUID) error {
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO sponsorships (event_id, sponsor_id, amount, status, manager_note, sponsor_note)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, q, s.EventID, s.SponsorID, s.Amount, string(s.Status), s.ManagerNote, s.SponsorNote).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return insertRevision(ctx, tx, s, actor)
	})
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("a sponsorship for this event and sponsor already exists")
	}
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *Repository) GetSponsorship(ctx context.Context, id uuid.UUID) (*models.Sponsorship, error) {
	s, err := scanSponsorship(r.pool.QueryRow(ctx, `SELECT `+sponsorshipColumns+` FROM sponsorships s WHERE s.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("sponsorship not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return s, nil
}

var errStale = errors.New("stale sponsorship status")

func (r *Repository) SaveSponsorship(ctx context.Context, s *models.Sponsorship, expected models.SponsorshipStatus, actor uuid.UUID) error {
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `UPDATE sponsorships
			SET amount = $1, status = $2, manager_note = $3, sponsor_note = $4, updated_at = NOW()
			WHERE id = $5 AND status = $6
			RETURNING updated_at`
		err := tx.QueryRow(ctx, q, s.Amount, string(s.Status), s.ManagerNote, s.SponsorNote, s.ID, string(expected)).
			Scan(&s.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return errStale
		}
		if err != nil {
			return err
		}
		return insertRevision(ctx, tx, s, actor)
	})
	if errors.Is(err, errStale) {
		return apperr.InvalidState("sponsorship changed concurrently")
	}
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *Repository) listViews(ctx context.Context, where string, arg uuid.UUID) ([]models.SponsorshipView, error) {
	q := `SELECT ` + sponsorshipColumns + `, e.title, e.event_date, e.manager_id, p.full_name, COALESCE(p.company_name,'')
		FROM sponsorships s
		JOIN events e ON e.id = s.event_id
		JOIN profiles p ON p.id = s.sponsor_id
		WHERE ` + where + ` ORDER BY s.updated_at DESC`
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.SponsorshipView{}
	for rows.Next() {
		var v models.SponsorshipView
		var managerID *uuid.UUID
		s, err := scanSponsorship(rows, &v.EventTitle, &v.EventDate, &managerID, &v.SponsorName, &v.CompanyName)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		v.Sponsorship = *s
		if managerID != nil {
			v.ManagerID = *managerID
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

// ListSponsorshipsForManager returns sponsorships on events the manager runs.
func (r *Repository) ListSponsorshipsForManager(ctx context.Context, managerID uuid.UUID) ([]models.SponsorshipView, error) {
	return r.listViews(ctx, `e.manager_id = $1`, managerID)
}

func (r *Repository) ListSponsorshipsForSponsor(ctx context.Context, sponsorID uuid.UUID) ([]models.SponsorshipView, error) {
	return r.listViews(ctx, `s.sponsor_id = $1`, sponsorID)
}

// ListSponsorshipRevisions returns the revisions of a sponsorship, oldest first.
func (r *Repository) ListSponsorshipRevisions(ctx context.Context, sponsorshipID uuid.UUID) ([]models.SponsorshipRevision, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sponsorship_id, amount, status, manager_note, sponsor_note, changed_by, changed_at
		FROM sponsorship_revisions WHERE sponsorship_id = $1 ORDER BY id`, sponsorshipID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.SponsorshipRevision{}
	for rows.Next() {
		var rev models.SponsorshipRevision
		var status string
		if err := rows.Scan(&rev.ID, &rev.SponsorshipID, &rev.Amount, &status, &rev.ManagerNote, &rev.SponsorNote, &rev.ChangedBy, &rev.ChangedAt); err != nil {
			return nil, apperr.Upstream(err)
		}
		rev.Status = models.SponsorshipStatus(status)
		list = append(list, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}
