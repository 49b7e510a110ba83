package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) CreateMasterRequest(_ context.Context, r *models.MasterDataRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateMasterRequest"); err != nil {
		return err
	}
	r.ID = s.newUUID()
	r.CreatedAt = s.now()
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

func (s *Store) GetMasterRequest(_ context.Context, id uuid.UUID) (*models.MasterDataRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("master data request not found")
	}
	cp := *r
	return &cp, nil
}

func (s *Store) ListMasterRequests(_ context.Context, f models.MasterDataFilter) ([]models.MasterDataRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListMasterRequests"); err != nil {
		return nil, err
	}
	list := []models.MasterDataRequest{}
	for _, r := range s.requests {
		if f.Match(r) {
			list = append(list, *r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if f.OldestFirst {
			return s.before(list[i].ID, list[j].ID)
		}
		ti, tj := list[i].CreatedAt, list[j].CreatedAt
		if list[i].ReviewedAt != nil {
			ti = *list[i].ReviewedAt
		}
		if list[j].ReviewedAt != nil {
			tj = *list[j].ReviewedAt
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.before(list[j].ID, list[i].ID)
	})
	return list, nil
}

func (s *Store) pendingRequest(id uuid.UUID) (*models.MasterDataRequest, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFound("master data request not found")
	}
	if r.Status != models.MasterDataPending {
		return nil, apperr.InvalidState("master data request is already " + string(r.Status))
	}
	return r, nil
}

// ApproveMasterRequest inserts the reference row first; the request is only
// marked approved when that insert succeeds.
func (s *Store) ApproveMasterRequest(_ context.Context, id, reviewer uuid.UUID) (*models.MasterDataRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.pendingRequest(id)
	if err != nil {
		return nil, err
	}
	rec, err := r.Record()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid payload", err)
	}
	switch v := rec.(type) {
	case *models.Category:
		err = s.insertCategory(v)
	case *models.Subtype:
		err = s.insertSubtype(v)
	case *models.Venue:
		err = s.insertVenue(v)
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	r.Status = models.MasterDataApproved
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	cp := *r
	return &cp, nil
}

func (s *Store) RejectMasterRequest(_ context.Context, id, reviewer uuid.UUID, reason string) (*models.MasterDataRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.pendingRequest(id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	r.Status = models.MasterDataRejected
	r.RejectionReason = reason
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	cp := *r
	return &cp, nil
}
