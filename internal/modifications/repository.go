package modifications

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

// Store is the modification request persistence contract.
type Store interface {
	CreateModification(ctx context.Context, m *models.ModificationRequest) error
	GetModification(ctx context.Context, id uuid.UUID) (*models.ModificationRequest, error)
	// RejectModification fails with InvalidState unless the request is pending.
	RejectModification(ctx context.Context, id uuid.UUID) error
	// ApplyModification copies the proposal onto the event and marks the
	// request accepted in one transaction. It fails with InvalidState when the
	// event is completed or cancelled and with Conflict when another event
	// holds the venue on the proposed date. On failure nothing changes.
	ApplyModification(ctx context.Context, id uuid.UUID) error
	ListModificationsForClient(ctx context.Context, clientID uuid.UUID) ([]models.ModificationView, error)
	ListModificationsByProposer(ctx context.Context, managerID uuid.UUID) ([]models.ModificationView, error)
}

// Repository handles modification requests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a modification repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SQLSTATEs raised by apply_modification_request.
const (
	codeNotPending  = "P0001"
	codeNotFound    = "P0002"
	codeEventClosed = "EH001"
	codeVenueTaken  = "EH002"
)

const modificationColumns = `m.id, m.event_id, m.proposed_by, m.proposed_venue_id, m.proposed_date, m.details, m.status, m.created_at, m.resolved_at`

func scanModification(row pgx.Row, extra ...any) (*models.ModificationRequest, error) {
	var m models.ModificationRequest
	var status string
	dest := append([]any{&m.ID, &m.EventID, &m.ProposedBy, &m.ProposedVenueID, &m.ProposedDate, &m.Details, &status, &m.CreatedAt, &m.ResolvedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.Status = models.ModificationStatus(status)
	return &m, nil
}

func (r *Repository) CreateModification(ctx context.Context, m *models.ModificationRequest) error {
	const q = `INSERT INTO modification_requests (event_id, proposed_by, proposed_venue_id, proposed_date, details, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, m.EventID, m.ProposedBy, m.ProposedVenueID, m.ProposedDate, m.Details, string(m.Status)).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *Repository) GetModification(ctx context.Context, id uuid.UUID) (*models.ModificationRequest, error) {
	m, err := scanModification(r.pool.QueryRow(ctx, `SELECT `+modificationColumns+` FROM modification_requests m WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("modification request not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return m, nil
}

func (r *Repository) RejectModification(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE modification_requests SET status = 'rejected', resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return apperr.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("modification request is no longer pending")
	}
	return nil
}

// ApplyModification calls the apply_modification_request store function.
func (r *Repository) ApplyModification(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `SELECT apply_modification_request($1)`, id)
	switch database.ErrorCode(err) {
	case "":
		if err != nil {
			return apperr.Upstream(err)
		}
		return nil
	case codeNotPending:
		return apperr.Wrap(apperr.KindInvalidState, "modification request is no longer pending", err)
	case codeNotFound:
		return apperr.Wrap(apperr.KindNotFound, "modification request not found", err)
	case codeEventClosed:
		return apperr.Wrap(apperr.KindInvalidState, "event is already closed", err)
	case codeVenueTaken, database.CodeUniqueViolation:
		return apperr.Wrap(apperr.KindConflict, "venue is no longer available on the proposed date", err)
	default:
		return apperr.Upstream(err)
	}
}

func (r *Repository) listViews(ctx context.Context, where string, arg uuid.UUID) ([]models.ModificationView, error) {
	q := `SELECT ` + modificationColumns + `, e.title, v.name
		FROM modification_requests m
		JOIN events e ON e.id = m.event_id
		JOIN venues v ON v.id = m.proposed_venue_id
		WHERE ` + where + ` ORDER BY m.created_at DESC`
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.ModificationView{}
	for rows.Next() {
		var v models.ModificationView
		m, err := scanModification(rows, &v.EventTitle, &v.ProposedVenueName)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		v.ModificationRequest = *m
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

// ListModificationsForClient returns requests on events the client owns.
func (r *Repository) ListModificationsForClient(ctx context.Context, clientID uuid.UUID) ([]models.ModificationView, error) {
	return r.listViews(ctx, `e.client_id = $1`, clientID)
}

// ListModificationsByProposer returns requests the manager proposed.
func (r *Repository) ListModificationsByProposer(ctx context.Context, managerID uuid.UUID) ([]models.ModificationView, error) {
	return r.listViews(ctx, `m.proposed_by = $1`, managerID)
}
