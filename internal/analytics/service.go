package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eventhub/backend/internal/models"
)

// Dashboard is a manager's view of their own events.
type Dashboard struct {
	Events               map[models.EventStatus]int      `json:"events"`
	PendingModifications int                             `json:"pending_modifications"`
	Sponsorships         *models.SponsorshipTotals       `json:"sponsorships"`
	Staffing             map[models.AssignmentStatus]int `json:"staffing"`
}

// Overview is the system-wide summary for the chief coordinator.
type Overview struct {
	Users                 map[models.Role]int        `json:"users"`
	PendingVerifications  int                        `json:"pending_verifications"`
	Events                map[models.EventStatus]int `json:"events"`
	PendingMasterRequests int                        `json:"pending_master_requests"`
	Sponsorships          *models.SponsorshipTotals  `json:"sponsorships"`
}

// Service assembles aggregates. Independent reads run concurrently.
type Service struct {
	store Store
}

// NewService creates an analytics service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Dashboard returns aggregates over the events the manager runs.
func (s *Service) Dashboard(ctx context.Context, manager *models.Profile) (*Dashboard, error) {
	id := manager.ID
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Events, err = s.store.CountEventsByStatus(ctx, &id)
		return err
	})
	g.Go(func() (err error) {
		d.PendingModifications, err = s.store.CountPendingModifications(ctx, &id)
		return err
	})
	g.Go(func() (err error) {
		d.Sponsorships, err = s.store.SponsorshipTotals(ctx, &id)
		return err
	})
	g.Go(func() (err error) {
		d.Staffing, err = s.store.CountAssignmentsByStatus(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fillStatuses(d.Events)
	return &d, nil
}

// Overview returns system-wide aggregates.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		o.Users, err = s.store.CountProfilesByRole(ctx)
		return err
	})
	g.Go(func() (err error) {
		o.PendingVerifications, err = s.store.CountPendingVerifications(ctx)
		return err
	})
	g.Go(func() (err error) {
		o.Events, err = s.store.CountEventsByStatus(ctx, nil)
		return err
	})
	g.Go(func() (err error) {
		o.PendingMasterRequests, err = s.store.CountPendingMasterRequests(ctx)
		return err
	})
	g.Go(func() (err error) {
		o.Sponsorships, err = s.store.SponsorshipTotals(ctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	fillStatuses(o.Events)
	for _, r := range models.Roles {
		if _, ok := o.Users[r]; !ok {
			o.Users[r] = 0
		}
	}
	return &o, nil
}

// fillStatuses reports every status, zero when absent.
func fillStatuses(m map[models.EventStatus]int) {
	for _, st := range models.EventStatuses {
		if _, ok := m[st]; !ok {
			m[st] = 0
		}
	}
}
