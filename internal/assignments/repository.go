package assignments

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

// Store is the staffing persistence contract.
type Store interface {
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	FindAssignment(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, from, to models.AssignmentStatus) error
	ListEmployeeAssignments(ctx context.Context, employeeID uuid.UUID) ([]models.AssignmentView, error)
	ListEventAssignments(ctx context.Context, eventID uuid.UUID) ([]models.AssignmentView, error)
}

// Repository handles assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an assignment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const assignmentColumns = `a.id, a.event_id, a.employee_id, a.role_description, a.status, a.created_at`

func scanAssignment(row pgx.Row, extra ...any) (*models.Assignment, error) {
	var a models.Assignment
	var status string
	dest := append([]any{&a.ID, &a.EventID, &a.EmployeeID, &a.RoleDescription, &status, &a.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Status = models.AssignmentStatus(status)
	return &a, nil
}

// CreateAssignment inserts a pending assignment. A second assignment of the
// same employee to the same event is a Conflict.
func (r *Repository) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	const q = `INSERT INTO assignments (event_id, employee_id, role_description, status)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, a.EventID, a.EmployeeID, a.RoleDescription, string(a.Status)).Scan(&a.ID, &a.CreatedAt)
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("employee is already assigned to this event")
	}
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, where string, args ...any) (*models.Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments a WHERE `+where, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("assignment not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return a, nil
}

func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return r.get(ctx, `a.id = $1`, id)
}

func (r *Repository) FindAssignment(ctx context.Context, eventID, employeeID uuid.UUID) (*models.Assignment, error) {
	return r.get(ctx, `a.event_id = $1 AND a.employee_id = $2`, eventID, employeeID)
}

func (r *Repository) UpdateAssignmentStatus(ctx context.Context, id uuid.UUID, from, to models.AssignmentStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assignments SET status = $1 WHERE id = $2 AND status = $3`, string(to), id, string(from))
	if err != nil {
		return apperr.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.InvalidState("assignment is no longer " + string(from))
	}
	return nil
}

func (r *Repository) listViews(ctx context.Context, where string, arg uuid.UUID) ([]models.AssignmentView, error) {
	q := `SELECT ` + assignmentColumns + `, e.title, e.event_date, e.status, p.full_name
		FROM assignments a
		JOIN events e ON e.id = a.event_id
		JOIN profiles p ON p.id = a.employee_id
		WHERE ` + where + ` ORDER BY e.event_date, a.created_at`
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.AssignmentView{}
	for rows.Next() {
		var v models.AssignmentView
		var eventStatus string
		a, err := scanAssignment(rows, &v.EventTitle, &v.EventDate, &eventStatus, &v.EmployeeName)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		v.Assignment = *a
		v.EventStatus = models.EventStatus(eventStatus)
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}

func (r *Repository) ListEmployeeAssignments(ctx context.Context, employeeID uuid.UUID) ([]models.AssignmentView, error) {
	return r.listViews(ctx, `a.employee_id = $1`, employeeID)
}

func (r *Repository) ListEventAssignments(ctx context.Context, eventID uuid.UUID) ([]models.AssignmentView, error) {
	return r.listViews(ctx, `a.event_id = $1`, eventID)
}
