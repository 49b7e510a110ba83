package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func errForeignKey(ref string) error {
	return fmt.Errorf("foreign key violation on %s", ref)
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListCategories"); err != nil {
		return nil, err
	}
	list := []models.Category{}
	for _, c := range s.categories {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	cp := *c
	return &cp, nil
}

func (s *Store) insertCategory(c *models.Category) error {
	if err := s.fail("InsertCategory"); err != nil {
		return err
	}
	for _, existing := range s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return apperr.Conflict("category already exists")
		}
	}
	c.ID = s.newInt()
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCategory(c)
}

func (s *Store) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok {
		return apperr.NotFound("category not found")
	}
	for id, other := range s.categories {
		if id != c.ID && strings.EqualFold(other.Name, c.Name) {
			return apperr.Conflict("category already exists")
		}
	}
	*existing = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return apperr.NotFound("category not found")
	}
	for _, st := range s.subtypes {
		if st.CategoryID == id {
			return apperr.Conflict("category is still referenced")
		}
	}
	for _, p := range s.profiles {
		if p.CategoryID != nil && *p.CategoryID == id {
			return apperr.Conflict("category is still referenced")
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListSubtypes(_ context.Context, categoryID *int64) ([]models.Subtype, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListSubtypes"); err != nil {
		return nil, err
	}
	list := []models.Subtype{}
	for _, st := range s.subtypes {
		if categoryID == nil || st.CategoryID == *categoryID {
			list = append(list, *st)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *Store) GetSubtype(_ context.Context, id int64) (*models.Subtype, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.subtypes[id]
	if !ok {
		return nil, apperr.NotFound("subtype not found")
	}
	cp := *st
	return &cp, nil
}

func (s *Store) insertSubtype(st *models.Subtype) error {
	if err := s.fail("InsertSubtype"); err != nil {
		return err
	}
	if _, ok := s.categories[st.CategoryID]; !ok {
		return apperr.Validation("category does not exist")
	}
	for _, other := range s.subtypes {
		if other.CategoryID == st.CategoryID && strings.EqualFold(other.Name, st.Name) {
			return apperr.Conflict("subtype already exists")
		}
	}
	st.ID = s.newInt()
	cp := *st
	s.subtypes[st.ID] = &cp
	return nil
}

func (s *Store) CreateSubtype(_ context.Context, st *models.Subtype) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertSubtype(st)
}

func (s *Store) UpdateSubtype(_ context.Context, st *models.Subtype) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subtypes[st.ID]
	if !ok {
		return apperr.NotFound("subtype not found")
	}
	if _, ok := s.categories[st.CategoryID]; !ok {
		return apperr.Validation("category does not exist")
	}
	*existing = *st
	return nil
}

func (s *Store) DeleteSubtype(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subtypes[id]; !ok {
		return apperr.NotFound("subtype not found")
	}
	for _, e := range s.events {
		if e.SubtypeID == id {
			return apperr.Conflict("subtype is still referenced")
		}
	}
	delete(s.subtypes, id)
	return nil
}

func (s *Store) ListVenues(_ context.Context) ([]models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListVenues"); err != nil {
		return nil, err
	}
	list := []models.Venue{}
	for _, v := range s.venues {
		list = append(list, *v)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *Store) GetVenue(_ context.Context, id int64) (*models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, apperr.NotFound("venue not found")
	}
	cp := *v
	return &cp, nil
}

func (s *Store) insertVenue(v *models.Venue) error {
	if err := s.fail("InsertVenue"); err != nil {
		return err
	}
	for _, other := range s.venues {
		if strings.EqualFold(other.Name, v.Name) {
			return apperr.Conflict("venue already exists")
		}
	}
	v.ID = s.newInt()
	cp := *v
	s.venues[v.ID] = &cp
	return nil
}

func (s *Store) CreateVenue(_ context.Context, v *models.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertVenue(v)
}

func (s *Store) UpdateVenue(_ context.Context, v *models.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.venues[v.ID]
	if !ok {
		return apperr.NotFound("venue not found")
	}
	existing.Name, existing.Address, existing.Capacity = v.Name, v.Address, v.Capacity
	return nil
}

func (s *Store) DeleteVenue(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.venues[id]; !ok {
		return apperr.NotFound("venue not found")
	}
	for _, e := range s.events {
		if e.VenueID != nil && *e.VenueID == id {
			return apperr.Conflict("venue is still referenced")
		}
	}
	delete(s.venues, id)
	return nil
}

func (s *Store) SetVenueImage(_ context.Context, id int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return apperr.NotFound("venue not found")
	}
	v.ImageKey = key
	return nil
}

func (s *Store) CheckVenueAvailability(_ context.Context, venueID int64, date models.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CheckVenueAvailability"); err != nil {
		return false, err
	}
	return s.venueFree(venueID, date), nil
}

func (s *Store) venueFree(venueID int64, date models.Date) bool {
	for _, e := range s.events {
		if e.VenueID != nil && *e.VenueID == venueID && e.EventDate.Equal(date) && e.Status != models.EventCancelled {
			return false
		}
	}
	return true
}
