package sponsorships

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

// EventGetter loads events.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// ProfileGetter loads profiles.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Service implements the sponsorship negotiation.
type Service struct {
	store    Store
	events   EventGetter
	profiles ProfileGetter
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates a sponsorship service.
func NewService(store Store, events EventGetter, profiles ProfileGetter, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, profiles: profiles, notifier: notifier, logger: logger}
}

// OfferInput is the body of POST /admin/sponsorships. With ID set it is a
// counter-offer on an existing sponsorship; otherwise a new offer.
type OfferInput struct {
	ID          *uuid.UUID               `json:"id"`
	EventID     *uuid.UUID               `json:"event_id"`
	SponsorID   *uuid.UUID               `json:"sponsor_id"`
	Amount      *float64                 `json:"amount" validate:"omitempty,gt=0"`
	Status      models.SponsorshipStatus `json:"status"`
	ManagerNote string                   `json:"manager_note" validate:"max=2000"`
}

// Offer creates a sponsorship or counters an existing one.
func (s *Service) Offer(ctx context.Context, caller *models.Profile, in OfferInput) (*models.Sponsorship, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.ID != nil {
		return s.counter(ctx, caller, *in.ID, in)
	}
	return s.create(ctx, caller, in)
}

func (s *Service) create(ctx context.Context, caller *models.Profile, in OfferInput) (*models.Sponsorship, error) {
	switch {
	case in.EventID == nil:
		return nil, apperr.Validation("event_id is required")
	case in.SponsorID == nil:
		return nil, apperr.Validation("sponsor_id is required")
	case in.Amount == nil:
		return nil, apperr.Validation("amount is required")
	}
	e, err := s.managedEvent(ctx, caller, *in.EventID)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return nil, apperr.InvalidState("cannot sponsor a " + string(e.Status) + " event")
	}
	sponsor, err := s.profiles.GetProfile(ctx, *in.SponsorID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Validation("sponsor does not exist")
	}
	if err != nil {
		return nil, err
	}
	if sponsor.Role != models.RoleSponsor {
		return nil, apperr.Validation("sponsor_id does not belong to a sponsor")
	}

	sp := &models.Sponsorship{
		EventID:     e.ID,
		SponsorID:   sponsor.ID,
		Amount:      *in.Amount,
		Status:      models.SponsorshipPending,
		ManagerNote: strings.TrimSpace(in.ManagerNote),
	}
	if err := s.store.CreateSponsorship(ctx, sp, caller.ID); err != nil {
		return nil, err
	}
	s.logger.Info("sponsorship offered", zap.String("sponsorship_id", sp.ID.String()), zap.Float64("amount", sp.Amount))
	s.notifier.Push(sponsor.ID, notify.SponsorshipOffered, sp)
	return sp, nil
}

func (s *Service) counter(ctx context.Context, caller *models.Profile, id uuid.UUID, in OfferInput) (*models.Sponsorship, error) {
	sp, err := s.store.GetSponsorship(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.managedEvent(ctx, caller, sp.EventID); err != nil {
		return nil, err
	}
	to := in.Status
	if to == "" {
		to = models.SponsorshipPending
	}
	if !to.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown sponsorship status %q", to))
	}
	if !sp.Status.CanTransition(to) {
		return nil, apperr.InvalidState(fmt.Sprintf("cannot move sponsorship from %s to %s", sp.Status, to))
	}

	expected := sp.Status
	sp.Status = to
	if in.Amount != nil {
		sp.Amount = *in.Amount
	}
	if note := strings.TrimSpace(in.ManagerNote); note != "" {
		sp.ManagerNote = note
	}
	if err := s.store.SaveSponsorship(ctx, sp, expected, caller.ID); err != nil {
		return nil, err
	}
	s.notifier.Push(sp.SponsorID, notify.SponsorshipOffered, sp)
	return sp, nil
}

func (s *Service) managedEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID) (*models.Event, error) {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.ManagedBy(caller.ID) {
		return nil, apperr.Forbidden("you are not the assigned manager of this event")
	}
	return e, nil
}

// RespondInput is the body of PATCH /sponsors/respond.
type RespondInput struct {
	SponsorshipID uuid.UUID                `json:"sponsorship_id" validate:"required"`
	Action        models.SponsorshipStatus `json:"action"`
	Amount        *float64                 `json:"amount" validate:"omitempty,gt=0"`
	SponsorNote   string                   `json:"sponsor_note" validate:"max=2000"`
}

// Respond records the sponsor's answer to an offer. A negotiating answer may
// carry a new amount and note.
func (s *Service) Respond(ctx context.Context, caller *models.Profile, in RespondInput) (*models.Sponsorship, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	sp, err := s.store.GetSponsorship(ctx, in.SponsorshipID)
	if err != nil {
		return nil, err
	}
	if sp.SponsorID != caller.ID {
		return nil, apperr.Forbidden("this sponsorship belongs to another sponsor")
	}
	switch in.Action {
	case models.SponsorshipAccepted, models.SponsorshipRejected, models.SponsorshipNegotiating:
	default:
		return nil, apperr.Validation("action must be one of: accepted rejected negotiating")
	}
	if !sp.Status.CanTransition(in.Action) {
		return nil, apperr.InvalidState(fmt.Sprintf("cannot move sponsorship from %s to %s", sp.Status, in.Action))
	}

	expected := sp.Status
	sp.Status = in.Action
	if in.Action == models.SponsorshipNegotiating {
		if in.Amount != nil {
			sp.Amount = *in.Amount
		}
		sp.SponsorNote = strings.TrimSpace(in.SponsorNote)
	}
	if err := s.store.SaveSponsorship(ctx, sp, expected, caller.ID); err != nil {
		return nil, err
	}
	s.logger.Info("sponsorship answered",
		zap.String("sponsorship_id", sp.ID.String()), zap.String("status", string(sp.Status)))

	if e, err := s.events.GetEvent(ctx, sp.EventID); err == nil && e.ManagerID != nil {
		s.notifier.Push(*e.ManagerID, notify.SponsorshipAnswered, sp)
	}
	return sp, nil
}

// ListForManager returns sponsorships on events the caller manages.
func (s *Service) ListForManager(ctx context.Context, caller *models.Profile) ([]models.SponsorshipView, error) {
	return s.store.ListSponsorshipsForManager(ctx, caller.ID)
}

// ListForSponsor returns the caller's sponsorships in every status.
func (s *Service) ListForSponsor(ctx context.Context, caller *models.Profile) ([]models.SponsorshipView, error) {
	return s.store.ListSponsorshipsForSponsor(ctx, caller.ID)
}

// History returns every revision of a sponsorship, oldest first, to its
// sponsor or the event's manager.
func (s *Service) History(ctx context.Context, caller *models.Profile, id uuid.UUID) ([]models.SponsorshipRevision, error) {
	sp, err := s.store.GetSponsorship(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.SponsorID != caller.ID {
		if _, err := s.managedEvent(ctx, caller, sp.EventID); err != nil {
			return nil, err
		}
	}
	return s.store.ListSponsorshipRevisions(ctx, id)
}
