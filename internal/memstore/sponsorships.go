package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) recordRevision(sp *models.Sponsorship, actor uuid.UUID) {
	rev := models.RevisionOf(sp, actor)
	rev.ID = s.newInt()
	rev.ChangedAt = s.now()
	s.revisions = append(s.revisions, rev)
}

func (s *Store) CreateSponsorship(_ context.Context, sp *models.Sponsorship, actor uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateSponsorship"); err != nil {
		return err
	}
	for _, other := range s.sponsorships {
		if other.EventID == sp.EventID && other.SponsorID == sp.SponsorID {
			return apperr.Conflict("a sponsorship for this event and sponsor already exists")
		}
	}
	sp.ID = s.newUUID()
	sp.CreatedAt = s.now()
	sp.UpdatedAt = sp.CreatedAt
	cp := *sp
	s.sponsorships[sp.ID] = &cp
	s.recordRevision(&cp, actor)
	return nil
}

func (s *Store) GetSponsorship(_ context.Context, id uuid.UUID) (*models.Sponsorship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetSponsorship"); err != nil {
		return nil, err
	}
	sp, ok := s.sponsorships[id]
	if !ok {
		return nil, apperr.NotFound("sponsorship not found")
	}
	cp := *sp
	return &cp, nil
}

func (s *Store) SaveSponsorship(_ context.Context, sp *models.Sponsorship, expected models.SponsorshipStatus, actor uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveSponsorship"); err != nil {
		return err
	}
	existing, ok := s.sponsorships[sp.ID]
	if !ok || existing.Status != expected {
		return apperr.InvalidState("sponsorship changed concurrently")
	}
	existing.Amount = sp.Amount
	existing.Status = sp.Status
	existing.ManagerNote = sp.ManagerNote
	existing.SponsorNote = sp.SponsorNote
	existing.UpdatedAt = s.now()
	sp.UpdatedAt = existing.UpdatedAt
	s.recordRevision(existing, actor)
	return nil
}

func (s *Store) listSponsorships(op string, keep func(*models.Sponsorship, *models.Event) bool) ([]models.SponsorshipView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	list := []models.SponsorshipView{}
	for _, sp := range s.sponsorships {
		e := s.events[sp.EventID]
		if e == nil || !keep(sp, e) {
			continue
		}
		v := models.SponsorshipView{Sponsorship: *sp, EventTitle: e.Title, EventDate: e.EventDate}
		if e.ManagerID != nil {
			v.ManagerID = *e.ManagerID
		}
		if p, ok := s.profiles[sp.SponsorID]; ok {
			v.SponsorName, v.CompanyName = p.FullName, p.CompanyName
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return s.before(list[j].ID, list[i].ID)
	})
	return list, nil
}

func (s *Store) ListSponsorshipsForManager(_ context.Context, managerID uuid.UUID) ([]models.SponsorshipView, error) {
	return s.listSponsorships("ListSponsorshipsForManager", func(_ *models.Sponsorship, e *models.Event) bool {
		return e.ManagedBy(managerID)
	})
}

func (s *Store) ListSponsorshipsForSponsor(_ context.Context, sponsorID uuid.UUID) ([]models.SponsorshipView, error) {
	return s.listSponsorships("ListSponsorshipsForSponsor", func(sp *models.Sponsorship, _ *models.Event) bool {
		return sp.SponsorID == sponsorID
	})
}

func (s *Store) ListSponsorshipRevisions(_ context.Context, sponsorshipID uuid.UUID) ([]models.SponsorshipRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []models.SponsorshipRevision{}
	for _, rev := range s.revisions {
		if rev.SponsorshipID == sponsorshipID {
			list = append(list, rev)
		}
	}
	return list, nil
}
