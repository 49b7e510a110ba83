package events

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

// Store is the event persistence contract.
type Store interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetEventView(ctx context.Context, id uuid.UUID) (*models.EventView, error)
	// ListClientEvents returns the client's events, newest first.
	ListClientEvents(ctx context.Context, clientID uuid.UUID) ([]models.EventView, error)
	ListManagerEvents(ctx context.Context, managerID uuid.UUID) ([]models.EventView, error)
	// UpdateEventStatus fails with InvalidState when the stored status is no longer from.
	UpdateEventStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) error
	SetEventManager(ctx context.Context, id, managerID uuid.UUID) error
	// PickManager returns the verified manager of the category with the fewest
	// open events, or nil when the category has none.
	PickManager(ctx context.Context, categoryID int64) (*uuid.UUID, error)
	HasPendingModification(ctx context.Context, eventID uuid.UUID) (bool, error)
}

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, title, client_id, manager_id, subtype_id, venue_id, event_date, guest_count, status, notes, created_at, updated_at`

const viewColumns = eventColumns + `, subtype_name, category_name, venue_name, client_name, manager_name`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var status string
	err := row.Scan(&e.ID, &e.Title, &e.ClientID, &e.ManagerID, &e.SubtypeID, &e.VenueID, &e.EventDate,
		&e.GuestCount, &status, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	return &e, nil
}

func scanView(row pgx.Row) (*models.EventView, error) {
	var v models.EventView
	var status string
	err := row.Scan(&v.ID, &v.Title, &v.ClientID, &v.ManagerID, &v.SubtypeID, &v.VenueID, &v.EventDate,
		&v.GuestCount, &status, &v.Notes, &v.CreatedAt, &v.UpdatedAt,
		&v.SubtypeName, &v.CategoryName, &v.VenueName, &v.ClientName, &v.ManagerName)
	if err != nil {
		return nil, err
	}
	v.Status = models.EventStatus(status)
	return &v, nil
}

// CreateEvent inserts an event and fills its generated fields.
func (r *Repository) CreateEvent(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, client_id, manager_id, subtype_id, venue_id, event_date, guest_count, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, e.Title, e.ClientID, e.ManagerID, e.SubtypeID, e.VenueID, e.EventDate,
		e.GuestCount, string(e.Status), e.Notes).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Wrap(apperr.KindConflict, "venue is not available on "+e.EventDate.String(), err)
	}
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// GetEvent returns an event by ID.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("event not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return e, nil
}

// GetEventView returns an event with resolved names.
func (r *Repository) GetEventView(ctx context.Context, id uuid.UUID) (*models.EventView, error) {
	v, err := scanView(r.pool.QueryRow(ctx, `SELECT `+viewColumns+` FROM event_overview WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("event not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return v, nil
}

func (r *Repository) listViews(ctx context.Context, q string, args ...any) ([]models.EventView, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.EventView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func (r *Repository) ListClientEvents(ctx context.Context, clientID uuid.UUID) ([]models.EventView, error) {
	return r.listViews(ctx, `SELECT `+viewColumns+` FROM event_overview WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
}

func (r *Repository) ListManagerEvents(ctx context.Context, managerID uuid.UUID) ([]models.EventView, error) {
	return r.listViews(ctx, `SELECT `+viewColumns+` FROM event_overview WHERE manager_id = $1 ORDER BY event_date, created_at`, managerID)
}

// UpdateEventStatus is a compare-and-set on status.
func (r *Repository) UpdateEventStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return apperr.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("event status changed concurrently")
	}
	return nil
}

func (r *Repository) SetEventManager(ctx context.Context, id, managerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET manager_id = $1, updated_at = NOW() WHERE id = $2`, managerID, id)
	if err != nil {
		return apperr.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

func (r *Repository) PickManager(ctx context.Context, categoryID int64) (*uuid.UUID, error) {
	const q = `SELECT p.id FROM profiles p
		LEFT JOIN events e ON e.manager_id = p.id AND e.status IN ('consideration','in_progress')
		WHERE p.role = 'manager' AND p.verification_status = 'verified' AND p.category_id = $1
		GROUP BY p.id, p.created_at
		ORDER BY COUNT(e.id), p.created_at
		LIMIT 1`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, categoryID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return &id, nil
}

func (r *Repository) HasPendingModification(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM modification_requests WHERE event_id = $1 AND status = 'pending')`, eventID).
		Scan(&exists)
	if err != nil {
		return false, apperr.Upstream(err)
	}
	return exists, nil
}
