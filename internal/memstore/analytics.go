package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
)

func managedBy(e *models.Event, managerID *uuid.UUID) bool {
	return managerID == nil || e.ManagedBy(*managerID)
}

func (s *Store) CountEventsByStatus(_ context.Context, managerID *uuid.UUID) (map[models.EventStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CountEventsByStatus"); err != nil {
		return nil, err
	}
	out := make(map[models.EventStatus]int)
	for _, e := range s.events {
		if managedBy(e, managerID) {
			out[e.Status]++
		}
	}
	return out, nil
}

func (s *Store) CountPendingModifications(_ context.Context, managerID *uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.modifications {
		if e, ok := s.events[m.EventID]; ok && m.Status == models.ModificationPending && managedBy(e, managerID) {
			n++
		}
	}
	return n, nil
}

func (s *Store) SponsorshipTotals(_ context.Context, managerID *uuid.UUID) (*models.SponsorshipTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := &models.SponsorshipTotals{ByStatus: make(map[models.SponsorshipStatus]int)}
	for _, sp := range s.sponsorships {
		e, ok := s.events[sp.EventID]
		if !ok || !managedBy(e, managerID) {
			continue
		}
		totals.ByStatus[sp.Status]++
		if sp.Status == models.SponsorshipAccepted {
			totals.AcceptedAmount += sp.Amount
		}
	}
	return totals, nil
}

func (s *Store) CountAssignmentsByStatus(_ context.Context, managerID uuid.UUID) (map[models.AssignmentStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.AssignmentStatus]int)
	for _, a := range s.assignments {
		if e, ok := s.events[a.EventID]; ok && e.ManagedBy(managerID) {
			out[a.Status]++
		}
	}
	return out, nil
}

func (s *Store) CountProfilesByRole(_ context.Context) (map[models.Role]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.Role]int)
	for _, p := range s.profiles {
		out[p.Role]++
	}
	return out, nil
}

func (s *Store) CountPendingVerifications(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.profiles {
		if p.VerificationStatus == models.VerificationPending {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountPendingMasterRequests(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Status == models.MasterDataPending {
			n++
		}
	}
	return n, nil
}
