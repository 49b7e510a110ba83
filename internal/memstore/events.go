package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) CreateEvent(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateEvent"); err != nil {
		return err
	}
	if _, ok := s.subtypes[e.SubtypeID]; !ok {
		return apperr.Upstream(errForeignKey("events.subtype_id"))
	}
	if e.VenueID != nil && e.Status != models.EventCancelled && !s.venueFree(*e.VenueID, e.EventDate) {
		return apperr.Conflict("venue is not available on " + e.EventDate.String())
	}
	e.ID = s.newUUID()
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetEvent"); err != nil {
		return nil, err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	cp := *e
	return &cp, nil
}

func (s *Store) view(e *models.Event) models.EventView {
	v := models.EventView{Event: *e}
	if st, ok := s.subtypes[e.SubtypeID]; ok {
		v.SubtypeName = st.Name
		if c, ok := s.categories[st.CategoryID]; ok {
			v.CategoryName = c.Name
		}
	}
	if e.VenueID != nil {
		if venue, ok := s.venues[*e.VenueID]; ok {
			v.VenueName = venue.Name
		}
	}
	if p, ok := s.profiles[e.ClientID]; ok {
		v.ClientName = p.FullName
	}
	if e.ManagerID != nil {
		if p, ok := s.profiles[*e.ManagerID]; ok {
			v.ManagerName = p.FullName
		}
	}
	return v
}

func (s *Store) GetEventView(_ context.Context, id uuid.UUID) (*models.EventView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	v := s.view(e)
	return &v, nil
}

func (s *Store) listEvents(op string, keep func(*models.Event) bool, newestFirst bool) ([]models.EventView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(op); err != nil {
		return nil, err
	}
	list := []models.EventView{}
	for _, e := range s.events {
		if keep(e) {
			list = append(list, s.view(e))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if newestFirst {
			return s.before(list[j].ID, list[i].ID)
		}
		if !list[i].EventDate.Equal(list[j].EventDate) {
			return list[i].EventDate.Before(list[j].EventDate.Time)
		}
		return s.before(list[i].ID, list[j].ID)
	})
	return list, nil
}

func (s *Store) ListClientEvents(_ context.Context, clientID uuid.UUID) ([]models.EventView, error) {
	return s.listEvents("ListClientEvents", func(e *models.Event) bool { return e.ClientID == clientID }, true)
}

func (s *Store) ListManagerEvents(_ context.Context, managerID uuid.UUID) ([]models.EventView, error) {
	return s.listEvents("ListManagerEvents", func(e *models.Event) bool { return e.ManagedBy(managerID) }, false)
}

func (s *Store) UpdateEventStatus(_ context.Context, id uuid.UUID, from, to models.EventStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateEventStatus"); err != nil {
		return err
	}
	e, ok := s.events[id]
	if !ok || e.Status != from {
		return apperr.InvalidState("event status changed concurrently")
	}
	e.Status = to
	e.UpdatedAt = s.now()
	return nil
}

func (s *Store) SetEventManager(_ context.Context, id, managerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return apperr.NotFound("event not found")
	}
	e.ManagerID = &managerID
	e.UpdatedAt = s.now()
	return nil
}

func (s *Store) PickManager(_ context.Context, categoryID int64) (*uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("PickManager"); err != nil {
		return nil, err
	}
	var best *models.Profile
	bestLoad := 0
	for _, p := range s.profiles {
		if p.Role != models.RoleManager || !p.Verified() || p.CategoryID == nil || *p.CategoryID != categoryID {
			continue
		}
		load := 0
		for _, e := range s.events {
			if e.ManagedBy(p.ID) && !e.Status.Terminal() {
				load++
			}
		}
		if best == nil || load < bestLoad || (load == bestLoad && s.before(p.ID, best.ID)) {
			best, bestLoad = p, load
		}
	}
	if best == nil {
		return nil, nil
	}
	id := best.ID
	return &id, nil
}

func (s *Store) HasPendingModification(_ context.Context, eventID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("HasPendingModification"); err != nil {
		return false, err
	}
	for _, m := range s.modifications {
		if m.EventID == eventID && m.Status == models.ModificationPending {
			return true, nil
		}
	}
	return false, nil
}
