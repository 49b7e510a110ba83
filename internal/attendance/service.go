package attendance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

// EventGetter loads events.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// AssignmentFinder finds an employee's assignment on an event.
type AssignmentFinder interface {
	FindAssignment(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Assignment, error)
}

// Service records and reports shift attendance.
type Service struct {
	store       Store
	events      EventGetter
	assignments AssignmentFinder
	logger      *zap.Logger
}

// NewService creates an attendance service.
func NewService(store Store, events EventGetter, assignments AssignmentFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, assignments: assignments, logger: logger}
}

// EventInput is the body of the check-in and check-out endpoints.
type EventInput struct {
	EventID uuid.UUID `json:"event_id" validate:"required"`
}

// CheckIn opens an attendance interval for the caller.
func (s *Service) CheckIn(ctx context.Context, caller *models.Profile, eventID uuid.UUID) (*models.Attendance, error) {
	if err := s.onShift(ctx, caller, eventID); err != nil {
		return nil, err
	}
	a, err := s.store.CheckIn(ctx, eventID, caller.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checked in", zap.String("event_id", eventID.String()), zap.String("employee_id", caller.ID.String()))
	return a, nil
}

// CheckOut closes the caller's open interval.
func (s *Service) CheckOut(ctx context.Context, caller *models.Profile, eventID uuid.UUID) (*models.Attendance, error) {
	if err := s.onShift(ctx, caller, eventID); err != nil {
		return nil, err
	}
	a, err := s.store.CheckOut(ctx, eventID, caller.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("checked out", zap.String("event_id", eventID.String()), zap.String("employee_id", caller.ID.String()))
	return a, nil
}

// onShift requires a running event and an accepted assignment on it.
func (s *Service) onShift(ctx context.Context, caller *models.Profile, eventID uuid.UUID) error {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	a, err := s.assignments.FindAssignment(ctx, eventID, caller.ID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Forbidden("you are not assigned to this event")
	}
	if err != nil {
		return err
	}
	if a.Status != models.AssignmentAccepted {
		return apperr.Forbidden("accept the assignment before recording attendance")
	}
	if e.Status != models.EventInProgress {
		return apperr.InvalidState("attendance can only be recorded while the event is in progress")
	}
	return nil
}

// List returns attendance of an event the caller manages.
func (s *Service) List(ctx context.Context, caller *models.Profile, eventID uuid.UUID) (*models.Event, []models.AttendanceView, error) {
	e, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !e.ManagedBy(caller.ID) {
		return nil, nil, apperr.Forbidden("you are not the assigned manager of this event")
	}
	list, err := s.store.ListEventAttendance(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return e, list, nil
}
