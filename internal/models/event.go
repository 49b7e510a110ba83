package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a bookable occurrence requested by a client.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	ClientID   uuid.UUID   `json:"client_id"`
	ManagerID  *uuid.UUID  `json:"manager_id,omitempty"`
	SubtypeID  int64       `json:"subtype_id"`
	VenueID    *int64      `json:"venue_id,omitempty"`
	EventDate  Date        `json:"event_date"`
	GuestCount int         `json:"guest_count"`
	Status     EventStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ManagedBy reports whether managerID is the event's assigned manager.
func (e *Event) ManagedBy(managerID uuid.UUID) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}

// EventView is an Event with reference names resolved for listings.
type EventView struct {
	Event
	SubtypeName  string `json:"subtype_name"`
	CategoryName string `json:"category_name"`
	VenueName    string `json:"venue_name,omitempty"`
	ClientName   string `json:"client_name,omitempty"`
	ManagerName  string `json:"manager_name,omitempty"`
}

// ModificationRequest proposes a new venue and date for an event.
type ModificationRequest struct {
	ID              uuid.UUID          `json:"id"`
	EventID         uuid.UUID          `json:"event_id"`
	ProposedBy      uuid.UUID          `json:"proposed_by"`
	ProposedVenueID int64              `json:"proposed_venue_id"`
	ProposedDate    Date               `json:"proposed_date"`
	Details         string             `json:"details,omitempty"`
	Status          ModificationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	ResolvedAt      *time.Time         `json:"resolved_at,omitempty"`
}

// ModificationView adds event and venue names to a request.
type ModificationView struct {
	ModificationRequest
	EventTitle        string `json:"event_title"`
	ProposedVenueName string `json:"proposed_venue_name"`
}

// Assignment staffs an employee on an event.
type Assignment struct {
	ID              uuid.UUID        `json:"id"`
	EventID         uuid.UUID        `json:"event_id"`
	EmployeeID      uuid.UUID        `json:"employee_id"`
	RoleDescription string           `json:"role_description"`
	Status          AssignmentStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
}

// AssignmentView adds event and employee details to an assignment.
type AssignmentView struct {
	Assignment
	EventTitle   string      `json:"event_title"`
	EventDate    Date        `json:"event_date"`
	EventStatus  EventStatus `json:"event_status"`
	EmployeeName string      `json:"employee_name"`
}

// Attendance is one check-in/check-out interval of an employee at an event.
type Attendance struct {
	ID         uuid.UUID  `json:"id"`
	EventID    uuid.UUID  `json:"event_id"`
	EmployeeID uuid.UUID  `json:"employee_id"`
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
}

// Open reports whether the employee has not checked out yet.
func (a *Attendance) Open() bool { return a.CheckOutAt == nil }

// AttendanceView adds the employee's name and worked seconds.
type AttendanceView struct {
	Attendance
	EmployeeName  string `json:"employee_name"`
	WorkedSeconds int64  `json:"worked_seconds"`
}
