package masterdata

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/validate"
)

// Review actions.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// Service implements the master-data request queue.
type Service struct {
	store    Store
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a master-data service.
func NewService(store Store, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// CreateInput is the body of POST /admin/master-requests.
type CreateInput struct {
	Type    models.MasterDataType `json:"type" validate:"required,oneof=venue category subtype"`
	Payload json.RawMessage       `json:"payload" validate:"required"`
	Note    string                `json:"note" validate:"max=1000"`
}

// Create queues a manager's request for a new venue, category or subtype.
// The payload must describe a valid row of the requested type.
func (s *Service) Create(ctx context.Context, caller *models.Profile, in CreateInput) (*models.MasterDataRequest, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	r := &models.MasterDataRequest{
		RequestedBy: caller.ID,
		Type:        in.Type,
		Payload:     in.Payload,
		Note:        strings.TrimSpace(in.Note),
		Status:      models.MasterDataPending,
	}
	rec, err := r.Record()
	if err != nil {
		return nil, apperr.Validation("payload is not a valid " + string(in.Type))
	}
	if err := validate.Struct(rec); err != nil {
		return nil, err
	}
	// store the normalised payload so approval inserts exactly what was validated
	if r.Payload, err = json.Marshal(rec); err != nil {
		return nil, apperr.Upstream(err)
	}
	if err := s.store.CreateMasterRequest(ctx, r); err != nil {
		return nil, err
	}
	s.logger.Info("master data requested", zap.String("request_id", r.ID.String()), zap.String("type", string(r.Type)))
	return r, nil
}

// Pending returns the approval queue, oldest first.
func (s *Service) Pending(ctx context.Context) ([]models.MasterDataRequest, error) {
	return s.store.ListMasterRequests(ctx, models.MasterDataFilter{
		Statuses:    []models.MasterDataStatus{models.MasterDataPending},
		OldestFirst: true,
	})
}

// History returns reviewed requests, newest first.
func (s *Service) History(ctx context.Context) ([]models.MasterDataRequest, error) {
	return s.store.ListMasterRequests(ctx, models.MasterDataFilter{
		Statuses: []models.MasterDataStatus{models.MasterDataApproved, models.MasterDataRejected},
	})
}

// Mine returns the caller's requests in every status.
func (s *Service) Mine(ctx context.Context, caller *models.Profile) ([]models.MasterDataRequest, error) {
	return s.store.ListMasterRequests(ctx, models.MasterDataFilter{RequestedBy: &caller.ID})
}

// ProcessInput is the body of PATCH /coordinator/master-requests/process.
type ProcessInput struct {
	RequestID       uuid.UUID `json:"request_id" validate:"required"`
	Action          string    `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string    `json:"rejection_reason" validate:"max=1000"`
}

// Process approves or rejects a pending request.
func (s *Service) Process(ctx context.Context, caller *models.Profile, in ProcessInput) (*models.MasterDataRequest, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMasterRequest(ctx, in.RequestID); err != nil {
		return nil, err
	}

	var (
		r   *models.MasterDataRequest
		err error
	)
	if in.Action == ActionApprove {
		r, err = s.store.ApproveMasterRequest(ctx, in.RequestID, caller.ID)
	} else {
		reason := strings.TrimSpace(in.RejectionReason)
		if reason == "" {
			return nil, apperr.Validation("rejection_reason is required")
		}
		r, err = s.store.RejectMasterRequest(ctx, in.RequestID, caller.ID, reason)
	}
	if err != nil {
		s.logger.Warn("master data review failed", zap.String("request_id", in.RequestID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("master data reviewed", zap.String("request_id", r.ID.String()), zap.String("status", string(r.Status)))
	s.notifier.Push(r.RequestedBy, notify.MasterRequestReviewed, r)
	return r, nil
}
