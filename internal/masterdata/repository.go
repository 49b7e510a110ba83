package masterdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/catalog"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/database"
)

// Store is the master-data request persistence contract.
type Store interface {
	CreateMasterRequest(ctx context.Context, r *models.MasterDataRequest) error
	GetMasterRequest(ctx context.Context, id uuid.UUID) (*models.MasterDataRequest, error)
	ListMasterRequests(ctx context.Context, f models.MasterDataFilter) ([]models.MasterDataRequest, error)
	// ApproveMasterRequest inserts the requested reference row and marks the
	// request approved in one transaction. A failed insert leaves it pending.
	ApproveMasterRequest(ctx context.Context, id, reviewer uuid.UUID) (*models.MasterDataRequest, error)
	RejectMasterRequest(ctx context.Context, id, reviewer uuid.UUID, reason string) (*models.MasterDataRequest, error)
}

// Repository handles master-data requests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a master-data request repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, requested_by, type, payload, note, status, COALESCE(rejection_reason,''), reviewed_by, created_at, reviewed_at`

func scanRequest(row pgx.Row) (*models.MasterDataRequest, error) {
	var r models.MasterDataRequest
	var typ, status string
	var payload []byte
	err := row.Scan(&r.ID, &r.RequestedBy, &typ, &payload, &r.Note, &status, &r.RejectionReason, &r.ReviewedBy, &r.CreatedAt, &r.ReviewedAt)
	if err != nil {
		return nil, err
	}
	r.Type = models.MasterDataType(typ)
	r.Status = models.MasterDataStatus(status)
	r.Payload = payload
	return &r, nil
}

func (r *Repository) CreateMasterRequest(ctx context.Context, req *models.MasterDataRequest) error {
	const q = `INSERT INTO master_data_requests (requested_by, type, payload, note, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, req.RequestedBy, string(req.Type), []byte(req.Payload), req.Note, string(req.Status)).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *Repository) GetMasterRequest(ctx context.Context, id uuid.UUID) (*models.MasterDataRequest, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM master_data_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("master data request not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return req, nil
}

func (r *Repository) ListMasterRequests(ctx context.Context, f models.MasterDataFilter) ([]models.MasterDataRequest, error) {
	var conds []string
	var args []any
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.RequestedBy != nil {
		args = append(args, *f.RequestedBy)
		conds = append(conds, fmt.Sprintf("requested_by = $%d", len(args)))
	}
	q := `SELECT ` + requestColumns + ` FROM master_data_requests`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.OldestFirst {
		q += " ORDER BY created_at ASC"
	} else {
		q += " ORDER BY COALESCE(reviewed_at, created_at) DESC"
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.MasterDataRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func lockPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.MasterDataRequest, error) {
	req, err := scanRequest(tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM master_data_requests WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("master data request not found")
	}
	if err != nil {
		return nil, err
	}
	if req.Status != models.MasterDataPending {
		return nil, apperr.InvalidState("master data request is already " + string(req.Status))
	}
	return req, nil
}

func insertRecord(ctx context.Context, q database.Querier, req *models.MasterDataRequest) error {
	rec, err := req.Record()
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid payload", err)
	}
	switch v := rec.(type) {
	case *models.Category:
		return catalog.InsertCategory(ctx, q, v)
	case *models.Subtype:
		return catalog.InsertSubtype(ctx, q, v)
	case *models.Venue:
		return catalog.InsertVenue(ctx, q, v)
	}
	return apperr.Validation("unknown master data type")
}

func (r *Repository) ApproveMasterRequest(ctx context.Context, id, reviewer uuid.UUID) (*models.MasterDataRequest, error) {
	var out *models.MasterDataRequest
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		req, err := lockPending(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := insertRecord(ctx, tx, req); err != nil {
			return err
		}
		out, err = scanRequest(tx.QueryRow(ctx, `UPDATE master_data_requests
			SET status = 'approved', reviewed_by = $1, reviewed_at = NOW()
			WHERE id = $2 RETURNING `+requestColumns, reviewer, id))
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *Repository) RejectMasterRequest(ctx context.Context, id, reviewer uuid.UUID, reason string) (*models.MasterDataRequest, error) {
	var out *models.MasterDataRequest
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockPending(ctx, tx, id); err != nil {
			return err
		}
		var err error
		out, err = scanRequest(tx.QueryRow(ctx, `UPDATE master_data_requests
			SET status = 'rejected', rejection_reason = $1, reviewed_by = $2, reviewed_at = NOW()
			WHERE id = $3 RETURNING `+requestColumns, reason, reviewer, id))
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func classify(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Upstream(err)
}
