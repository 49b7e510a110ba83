package assignments

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

// Service implements event staffing.
type Service struct {
	store    Store
	events   EventGetter
	profiles ProfileGetter
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates an assignment service.
func NewService(store Store, events EventGetter, profiles ProfileGetter, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, profiles: profiles, notifier: notifier, logger: logger}
}

// AssignInput is the body of POST /admin/assign-staff.
type AssignInput struct {
	EventID         uuid.UUID `json:"event_id" validate:"required"`
	EmployeeID      uuid.UUID `json:"employee_id" validate:"required"`
	RoleDescription string    `json:"role_description" validate:"notblank,max=200"`
}

// Assign offers an event shift to a verified employee.
func (s *Service) Assign(ctx context.Context, caller *models.Profile, in AssignInput) (*models.Assignment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.managedEvent(ctx, caller, in.EventID)
	if err != nil {
		return nil, err
	}
	if e.Status.Terminal() {
		return nil, apperr.InvalidState("cannot staff a " + string(e.Status) + " event")
	}
	emp, err := s.profiles.GetProfile(ctx, in.EmployeeID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Validation("employee does not exist")
	}
	if err != nil {
		return nil, err
	}
	if emp.Role != models.RoleEmployee || !emp.Verified() {
		return nil, apperr.Validation("target is not a verified employee")
	}

	a := &models.Assignment{
		EventID:         e.ID,
		EmployeeID:      emp.ID,
		RoleDescription: strings.TrimSpace(in.RoleDescription),
		Status:          models.AssignmentPending,
	}
	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("staff assigned", zap.String("event_id", e.ID.String()), zap.String("employee_id", emp.ID.String()))
	s.notifier.Push(emp.ID, notify.AssignmentCreated, a)
	return a, nil
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

// ListForEvent returns the staff of an event the caller manages.
func (s *Service) ListForEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID) ([]models.AssignmentView, error) {
	if _, err := s.managedEvent(ctx, caller, eventID); err != nil {
		return nil, err
	}
	return s.store.ListEventAssignments(ctx, eventID)
}

// Mine returns the calling employee's assignments.
func (s *Service) Mine(ctx context.Context, caller *models.Profile) ([]models.AssignmentView, error) {
	return s.store.ListEmployeeAssignments(ctx, caller.ID)
}

// RespondInput is the body of PATCH /employee/assignments/respond.
type RespondInput struct {
	AssignmentID uuid.UUID               `json:"assignment_id" validate:"required"`
	Status       models.AssignmentStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

// Respond accepts or declines one of the caller's assignments.
func (s *Service) Respond(ctx context.Context, caller *models.Profile, in RespondInput) (*models.Assignment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	a, err := s.store.GetAssignment(ctx, in.AssignmentID)
	if err != nil {
		return nil, err
	}
	if a.EmployeeID != caller.ID {
		return nil, apperr.Forbidden("this assignment belongs to another employee")
	}
	if !a.Status.CanTransition(in.Status) {
		return nil, apperr.InvalidState(fmt.Sprintf("assignment is already %s", a.Status))
	}
	if err := s.store.UpdateAssignmentStatus(ctx, a.ID, a.Status, in.Status); err != nil {
		return nil, err
	}
	a.Status = in.Status

	if e, err := s.events.GetEvent(ctx, a.EventID); err == nil && e.ManagerID != nil {
		s.notifier.Push(*e.ManagerID, notify.AssignmentAnswered, a)
	}
	return a, nil
}
