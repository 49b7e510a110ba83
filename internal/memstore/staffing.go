package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

func (s *Store) CreateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateAssignment"); err != nil {
		return err
	}
	for _, other := range s.assignments {
		if other.EventID == a.EventID && other.EmployeeID == a.EmployeeID {
			return apperr.Conflict("employee is already assigned to this event")
		}
	}
	a.ID = s.newUUID()
	a.CreatedAt = s.now()
	cp := *a
	s.assignments[a.ID] = &cp
	return nil
}

func (s *Store) GetAssignment(_ context.Context, id uuid.UUID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, apperr.NotFound("assignment not found")
	}
	cp := *a
	return &cp, nil
}

func (s *Store) FindAssignment(_ context.Context, eventID, employeeID uuid.UUID) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.assignments {
		if a.EventID == eventID && a.EmployeeID == employeeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("assignment not found")
}

func (s *Store) UpdateAssignmentStatus(_ context.Context, id uuid.UUID, from, to models.AssignmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateAssignmentStatus"); err != nil {
		return err
	}
	a, ok := s.assignments[id]
	if !ok || a.Status != from {
		return apperr.InvalidState("assignment is no longer " + string(from))
	}
	a.Status = to
	return nil
}

func (s *Store) listAssignments(keep func(*models.Assignment) bool) []models.AssignmentView {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []models.AssignmentView{}
	for _, a := range s.assignments {
		if !keep(a) {
			continue
		}
		v := models.AssignmentView{Assignment: *a}
		if e, ok := s.events[a.EventID]; ok {
			v.EventTitle, v.EventDate, v.EventStatus = e.Title, e.EventDate, e.Status
		}
		if p, ok := s.profiles[a.EmployeeID]; ok {
			v.EmployeeName = p.FullName
		}
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].EventDate.Equal(list[j].EventDate) {
			return list[i].EventDate.Before(list[j].EventDate.Time)
		}
		return s.before(list[i].ID, list[j].ID)
	})
	return list
}

func (s *Store) ListEmployeeAssignments(_ context.Context, employeeID uuid.UUID) ([]models.AssignmentView, error) {
	return s.listAssignments(func(a *models.Assignment) bool { return a.EmployeeID == employeeID }), nil
}

func (s *Store) ListEventAssignments(_ context.Context, eventID uuid.UUID) ([]models.AssignmentView, error) {
	return s.listAssignments(func(a *models.Assignment) bool { return a.EventID == eventID }), nil
}

func (s *Store) CheckIn(_ context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CheckIn"); err != nil {
		return nil, err
	}
	for _, a := range s.attendance {
		if a.EventID == eventID && a.EmployeeID == employeeID && a.Open() {
			return nil, apperr.Conflict("already checked in")
		}
	}
	a := &models.Attendance{ID: s.newUUID(), EventID: eventID, EmployeeID: employeeID, CheckInAt: s.now()}
	s.attendance = append(s.attendance, a)
	cp := *a
	return &cp, nil
}

func (s *Store) CheckOut(_ context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CheckOut"); err != nil {
		return nil, err
	}
	for _, a := range s.attendance {
		if a.EventID == eventID && a.EmployeeID == employeeID && a.Open() {
			now := s.now()
			a.CheckOutAt = &now
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.InvalidState("not checked in")
}

func (s *Store) ListEventAttendance(_ context.Context, eventID uuid.UUID) ([]models.AttendanceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListEventAttendance"); err != nil {
		return nil, err
	}
	now := s.now()
	list := []models.AttendanceView{}
	for _, a := range s.attendance {
		if a.EventID != eventID {
			continue
		}
		end := now
		if a.CheckOutAt != nil {
			end = *a.CheckOutAt
		}
		v := models.AttendanceView{Attendance: *a, WorkedSeconds: int64(end.Sub(a.CheckInAt).Seconds())}
		if v.WorkedSeconds < 0 {
			v.WorkedSeconds = 0
		}
		if p, ok := s.profiles[a.EmployeeID]; ok {
			v.EmployeeName = p.FullName
		}
		list = append(list, v)
	}
	return list, nil
}
