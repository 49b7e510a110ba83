package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) CreateModification(_ context.Context, m *models.ModificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateModification"); err != nil {
		return err
	}
	if _, ok := s.events[m.EventID]; !ok {
		return apperr.Upstream(errForeignKey("modification_requests.event_id"))
	}
	if _, ok := s.venues[m.ProposedVenueID]; !ok {
		return apperr.Upstream(errForeignKey("modification_requests.proposed_venue_id"))
	}
	m.ID = s.newUUID()
	m.CreatedAt = s.now()
	cp := *m
	s.modifications[m.ID] = &cp
	return nil
}

func (s *Store) GetModification(_ context.Context, id uuid.UUID) (*models.ModificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetModification"); err != nil {
		return nil, err
	}
	m, ok := s.modifications[id]
	if !ok {
		return nil, apperr.NotFound("modification request not found")
	}
	cp := *m
	return &cp, nil
}

func (s *Store) RejectModification(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RejectModification"); err != nil {
		return err
	}
	m, ok := s.modifications[id]
	if !ok || m.Status != models.ModificationPending {
		return apperr.InvalidState("modification request is no longer pending")
	}
	now := s.now()
	m.Status = models.ModificationRejected
	m.ResolvedAt = &now
	return nil
}

// ApplyModification updates the event and the request together or not at all.
func (s *Store) ApplyModification(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ApplyModification"); err != nil {
		return err
	}
	m, ok := s.modifications[id]
	if !ok {
		return apperr.NotFound("modification request not found")
	}
	if m.Status != models.ModificationPending {
		return apperr.InvalidState("modification request is no longer pending")
	}
	e, ok := s.events[m.EventID]
	if !ok {
		return apperr.NotFound("event not found")
	}
	if e.Status.Terminal() {
		return apperr.InvalidState("event is already " + string(e.Status))
	}
	for _, other := range s.events {
		if other.ID != e.ID && other.VenueID != nil && *other.VenueID == m.ProposedVenueID &&
			other.EventDate.Equal(m.ProposedDate) && other.Status != models.EventCancelled {
			return apperr.Conflict("venue is no longer available on the proposed date")
		}
	}
	now := s.now()
	venue := m.ProposedVenueID
	e.VenueID = &venue
	e.EventDate = m.ProposedDate
	e.UpdatedAt = now
	m.Status = models.ModificationAccepted
	m.ResolvedAt = &now
	return nil
}

func (s *Store) listModifications(op string, keep func(*models.ModificationRequest, *models.Event) bool) ([]models.ModificationView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	list := []models.ModificationView{}
	for _, m := range s.modifications {
		e := s.events[m.EventID]
		if e == nil || !keep(m, e) {
			continue
		}
		v := models.ModificationView{ModificationRequest: *m, EventTitle: e.Title}
		if venue, ok := s.venues[m.ProposedVenueID]; ok {
			v.ProposedVenueName = venue.Name
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool { return s.before(list[j].ID, list[i].ID) })
	return list, nil
}

func (s *Store) ListModificationsForClient(_ context.Context, clientID uuid.UUID) ([]models.ModificationView, error) {
	return s.listModifications("ListModificationsForClient", func(_ *models.ModificationRequest, e *models.Event) bool {
		return e.ClientID == clientID
	})
}

func (s *Store) ListModificationsByProposer(_ context.Context, managerID uuid.UUID) ([]models.ModificationView, error) {
	return s.listModifications("ListModificationsByProposer", func(m *models.ModificationRequest, _ *models.Event) bool {
		return m.ProposedBy == managerID
	})
}
