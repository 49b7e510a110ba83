package attendance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/database"
)

// Store is the attendance persistence contract.
type Store interface {
	// CheckIn opens an interval; a second open interval is a Conflict.
	CheckIn(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error)
	// CheckOut closes the open interval; none open is InvalidState.
	CheckOut(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error)
	ListEventAttendance(ctx context.Context, eventID uuid.UUID) ([]models.AttendanceView, error)
}

// Repository handles attendance intervals.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CheckIn(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error) {
	a := models.Attendance{EventID: eventID, EmployeeID: employeeID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO attendance (event_id, employee_id, check_in_at) VALUES ($1, $2, NOW()) RETURNING id, check_in_at`,
		eventID, employeeID).Scan(&a.ID, &a.CheckInAt)
	if database.IsUniqueViolation(err) {
		return nil, apperr.Conflict("already checked in")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return &a, nil
}

// CheckOut closes the most recent open interval for this employee at this event.
func (r *Repository) CheckOut(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Attendance, error) {
	var a models.Attendance
	err := r.pool.QueryRow(ctx,
		`UPDATE attendance SET check_out_at = NOW()
		 WHERE event_id = $1 AND employee_id = $2 AND check_out_at IS NULL
		 RETURNING id, event_id, employee_id, check_in_at, check_out_at`,
		eventID, employeeID).Scan(&a.ID, &a.EventID, &a.EmployeeID, &a.CheckInAt, &a.CheckOutAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.InvalidState("not checked in")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return &a, nil
}

// ListEventAttendance returns intervals for an event with worked seconds; open
// intervals count up to now.
func (r *Repository) ListEventAttendance(ctx context.Context, eventID uuid.UUID) ([]models.AttendanceView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.event_id, a.employee_id, a.check_in_at, a.check_out_at, p.full_name,
		        GREATEST(0, EXTRACT(EPOCH FROM (COALESCE(a.check_out_at, NOW()) - a.check_in_at))::BIGINT)
		 FROM attendance a JOIN profiles p ON p.id = a.employee_id
		 WHERE a.event_id = $1 ORDER BY a.check_in_at`,
		eventID)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.AttendanceView{}
	for rows.Next() {
		var v models.AttendanceView
		if err := rows.Scan(&v.ID, &v.EventID, &v.EmployeeID, &v.CheckInAt, &v.CheckOutAt, &v.EmployeeName, &v.WorkedSeconds); err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}
