package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.NotFound("profile not found")
	}
	cp := *p
	return &cp, nil
}

func (s *Store) CreateProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateProfile"); err != nil {
		return err
	}
	if _, ok := s.profiles[p.ID]; ok {
		return apperr.Conflict("profile already exists")
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return apperr.Upstream(errForeignKey("profiles.category_id"))
		}
	}
	p.CreatedAt = s.now()
	s.seq++
	s.order[p.ID] = s.seq
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *Store) ListProfiles(_ context.Context, f models.ProfileFilter) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListProfiles"); err != nil {
		return nil, err
	}
	list := []models.Profile{}
	for _, p := range s.profiles {
		if f.Match(p) {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].FullName != list[j].FullName {
			return list[i].FullName < list[j].FullName
		}
		return list[i].Email < list[j].Email
	})
	return list, nil
}

func (s *Store) UpdateVerification(_ context.Context, id uuid.UUID, from, to models.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateVerification"); err != nil {
		return err
	}
	p, ok := s.profiles[id]
	if !ok || p.VerificationStatus != from {
		return apperr.InvalidState("verification status changed concurrently")
	}
	p.VerificationStatus = to
	return nil
}
