package modifications

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/validate"
)

// Actions a client may take on a proposal.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// EventGetter loads events.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Venues answers venue lookups and availability.
type Venues interface {
	GetVenue(ctx context.Context, id int64) (*models.Venue, error)
	CheckVenueAvailability(ctx context.Context, venueID int64, date models.Date) (bool, error)
}

// Service implements modification proposals.
type Service struct {
	store    Store
	events   EventGetter
	venues   Venues
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a modification service.
func NewService(store Store, events EventGetter, venues Venues, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, venues: venues, notifier: notifier, logger: logger}
}

// ProposeInput is the body of POST /events/modify.
type ProposeInput struct {
	EventID         uuid.UUID    `json:"event_id" validate:"required"`
	ProposedVenueID int64        `json:"proposed_venue_id" validate:"required,gt=0"`
	ProposedDate    *models.Date `json:"proposed_date" validate:"required"`
	Details         string       `json:"details" validate:"max=2000"`
}

// Propose records a pending venue/date change for an event the caller manages.
// Nothing is stored when the venue is taken on the proposed date.
func (s *Service) Propose(ctx context.Context, caller *models.Profile, in ProposeInput) (*models.ModificationRequest, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.events.GetEvent(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if !e.ManagedBy(caller.ID) {
		return nil, apperr.Forbidden("you are not the assigned manager of this event")
	}
	if e.Status.Terminal() {
		return nil, apperr.InvalidState("cannot modify a " + string(e.Status) + " event")
	}
	if e.VenueID != nil && *e.VenueID == in.ProposedVenueID && e.EventDate.Equal(*in.ProposedDate) {
		return nil, apperr.Validation("proposal matches the current booking")
	}
	if _, err := s.venues.GetVenue(ctx, in.ProposedVenueID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("venue does not exist")
		}
		return nil, err
	}
	free, err := s.venues.CheckVenueAvailability(ctx, in.ProposedVenueID, *in.ProposedDate)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperr.Conflict("venue is not available on " + in.ProposedDate.String())
	}

	m := &models.ModificationRequest{
		EventID:         e.ID,
		ProposedBy:      caller.ID,
		ProposedVenueID: in.ProposedVenueID,
		ProposedDate:    *in.ProposedDate,
		Details:         strings.TrimSpace(in.Details),
		Status:          models.ModificationPending,
	}
	if err := s.store.CreateModification(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("modification proposed", zap.String("request_id", m.ID.String()), zap.String("event_id", e.ID.String()))
	s.notifier.Push(e.ClientID, notify.ModificationProposed, m)
	return m, nil
}

// RespondInput is the body of POST /events/respond.
type RespondInput struct {
	RequestID uuid.UUID `json:"request_id" validate:"required"`
	Action    string    `json:"action"`
}

// Respond lets the event's client accept or reject a pending proposal.
// Accepting applies the proposal atomically and is refused once the event is
// closed or the venue has been taken since; if that fails the request stays
// pending.
func (s *Service) Respond(ctx context.Context, caller *models.Profile, in RespondInput) (*models.ModificationRequest, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	m, err := s.store.GetModification(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	e, err := s.events.GetEvent(ctx, m.EventID)
	if err != nil {
		return nil, err
	}
	if e.ClientID != caller.ID {
		return nil, apperr.Forbidden("you do not own this event")
	}

	var to models.ModificationStatus
	switch in.Action {
	case ActionAccept:
		to = models.ModificationAccepted
	case ActionReject:
		to = models.ModificationRejected
	default:
		return nil, apperr.Validation("action must be accept or reject")
	}
	if !m.Status.CanTransition(to) {
		return nil, apperr.InvalidState("modification request is already " + string(m.Status))
	}
	if to == models.ModificationAccepted && e.Status.Terminal() {
		return nil, apperr.InvalidState("cannot modify a " + string(e.Status) + " event")
	}

	if to == models.ModificationAccepted {
		err = s.store.ApplyModification(ctx, m.ID)
	} else {
		err = s.store.RejectModification(ctx, m.ID)
	}
	if err != nil {
		s.logger.Warn("modification response failed", zap.String("request_id", m.ID.String()), zap.String("action", in.Action), zap.Error(err))
		return nil, err
	}

	m, err = s.store.GetModification(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.Push(m.ProposedBy, notify.ModificationResolved, m)
	return m, nil
}

// ListForClient returns proposals on the caller's events.
func (s *Service) ListForClient(ctx context.Context, caller *models.Profile) ([]models.ModificationView, error) {
	return s.store.ListModificationsForClient(ctx, caller.ID)
}

// ListProposed returns the proposals the calling manager made.
func (s *Service) ListProposed(ctx context.Context, caller *models.Profile) ([]models.ModificationView, error) {
	return s.store.ListModificationsByProposer(ctx, caller.ID)
}
