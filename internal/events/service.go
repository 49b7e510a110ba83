package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/validate"
)

// Catalog is the reference data the lifecycle needs.
type Catalog interface {
	GetSubtype(ctx context.Context, id int64) (*models.Subtype, error)
	GetVenue(ctx context.Context, id int64) (*models.Venue, error)
	CheckVenueAvailability(ctx context.Context, venueID int64, date models.Date) (bool, error)
}

// ProfileGetter loads profiles by id.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Service implements the event lifecycle.
type Service struct {
	store    Store
	catalog  Catalog
	profiles ProfileGetter
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates an event service.
func NewService(store Store, catalog Catalog, profiles ProfileGetter, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, catalog: catalog, profiles: profiles, notifier: notifier, logger: logger}
}

// CreateInput is the body of POST /events.
type CreateInput struct {
	Title      string       `json:"title" validate:"notblank,max=200"`
	SubtypeID  int64        `json:"subtype_id" validate:"required,gt=0"`
	EventDate  *models.Date `json:"event_date" validate:"required"`
	VenueID    *int64       `json:"venue_id" validate:"omitempty,gt=0"`
	GuestCount int          `json:"guest_count" validate:"gte=0"`
	Notes      string       `json:"notes" validate:"max=2000"`
}

// Create stores a new event in consideration owned by the caller and assigns
// the least busy verified manager of the subtype's category, if any.
func (s *Service) Create(ctx context.Context, caller *models.Profile, in CreateInput) (*models.Event, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	subtype, err := s.catalog.GetSubtype(ctx, in.SubtypeID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Validation("subtype does not exist")
	}
	if err != nil {
		return nil, err
	}
	if in.VenueID != nil {
		if err := s.checkVenue(ctx, *in.VenueID, *in.EventDate); err != nil {
			return nil, err
		}
	}
	managerID, err := s.store.PickManager(ctx, subtype.CategoryID)
	if err != nil {
		return nil, err
	}

	e := &models.Event{
		Title:      strings.TrimSpace(in.Title),
		ClientID:   caller.ID,
		ManagerID:  managerID,
		SubtypeID:  in.SubtypeID,
		VenueID:    in.VenueID,
		EventDate:  *in.EventDate,
		GuestCount: in.GuestCount,
		Status:     models.EventConsideration,
		Notes:      in.Notes,
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("event_id", e.ID.String()), zap.String("client_id", caller.ID.String()))

	s.notifier.EventConfirmation(*caller, *e)
	if managerID != nil {
		s.notifier.Push(*managerID, notify.EventCreated, e)
	}
	return e, nil
}

func (s *Service) checkVenue(ctx context.Context, venueID int64, date models.Date) error {
	if _, err := s.catalog.GetVenue(ctx, venueID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("venue does not exist")
		}
		return err
	}
	free, err := s.catalog.CheckVenueAvailability(ctx, venueID, date)
	if err != nil {
		return err
	}
	if !free {
		return apperr.Conflict("venue is not available on " + date.String())
	}
	return nil
}

// ListMine returns the caller's events, newest first.
func (s *Service) ListMine(ctx context.Context, caller *models.Profile) ([]models.EventView, error) {
	return s.store.ListClientEvents(ctx, caller.ID)
}

// ListManaged returns the events assigned to the calling manager.
func (s *Service) ListManaged(ctx context.Context, caller *models.Profile) ([]models.EventView, error) {
	return s.store.ListManagerEvents(ctx, caller.ID)
}

// Get returns one event to its client, its manager or the chief coordinator.
func (s *Service) Get(ctx context.Context, caller *models.Profile, id uuid.UUID) (*models.EventView, error) {
	v, err := s.store.GetEventView(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleChiefCoordinator && v.ClientID != caller.ID && !v.ManagedBy(caller.ID) {
		return nil, apperr.Forbidden("you do not have access to this event")
	}
	return v, nil
}

// managed loads an event the caller must be the assigned manager of.
func (s *Service) managed(ctx context.Context, caller *models.Profile, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.ManagedBy(caller.ID) {
		return nil, apperr.Forbidden("you are not the assigned manager of this event")
	}
	return e, nil
}

// Approve moves an event from consideration to in_progress.
func (s *Service) Approve(ctx context.Context, caller *models.Profile, id uuid.UUID) (*models.Event, error) {
	e, err := s.managed(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if e.Status != models.EventConsideration {
		return nil, apperr.InvalidState("Only events in consideration can be approved.")
	}
	if err := s.transition(ctx, e, models.EventInProgress); err != nil {
		return nil, err
	}
	s.notifier.Push(e.ClientID, notify.EventApproved, e)
	return e, nil
}

// UpdateStatus moves an event along the lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, caller *models.Profile, id uuid.UUID, to models.EventStatus) (*models.Event, error) {
	if !to.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown event status %q", to))
	}
	e, err := s.managed(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !e.Status.CanTransition(to) {
		return nil, apperr.InvalidState(fmt.Sprintf("cannot move event from %s to %s", e.Status, to))
	}
	if err := s.transition(ctx, e, to); err != nil {
		return nil, err
	}
	s.notifier.Push(e.ClientID, notify.EventStatusChanged, e)
	return e, nil
}

// transition writes the new status. Starting an event is blocked while a
// modification request is pending.
func (s *Service) transition(ctx context.Context, e *models.Event, to models.EventStatus) error {
	if to == models.EventInProgress {
		pending, err := s.store.HasPendingModification(ctx, e.ID)
		if err != nil {
			return err
		}
		if pending {
			return apperr.Conflict("event has a pending modification request")
		}
	}
	if err := s.store.UpdateEventStatus(ctx, e.ID, e.Status, to); err != nil {
		return err
	}
	s.logger.Info("event status changed",
		zap.String("event_id", e.ID.String()), zap.String("from", string(e.Status)), zap.String("to", string(to)))
	e.Status = to
	return nil
}

// AssignManager sets or replaces the manager of a live event.
func (s *Service) AssignManager(ctx context.Context, eventID, managerID uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return nil, apperr.InvalidState("cannot reassign a " + string(e.Status) + " event")
	}
	m, err := s.profiles.GetProfile(ctx, managerID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Validation("manager does not exist")
	}
	if err != nil {
		return nil, err
	}
	if m.Role != models.RoleManager || !m.Verified() {
		return nil, apperr.Validation("target is not a verified manager")
	}
	if err := s.store.SetEventManager(ctx, eventID, managerID); err != nil {
		return nil, err
	}
	e.ManagerID = &managerID
	s.notifier.Push(managerID, notify.EventManagerAssigned, e)
	return e, nil
}
