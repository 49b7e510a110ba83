package emaillogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

// Store persists delivery attempts.
type Store interface {
	RecordEmail(ctx context.Context, l *models.EmailLog) error
	GetEmailLog(ctx context.Context, id uuid.UUID) (*models.EmailLog, error)
	// ListEmailLogs returns logs newest first.
	ListEmailLogs(ctx context.Context, f models.EmailLogFilter) ([]models.EmailLog, error)
}

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const logColumns = `id, job_id, template, recipient_id, recipient_email, recipient_name, subject, body, status, attempt, error_message, created_at`

func scanLog(row pgx.Row) (*models.EmailLog, error) {
	var l models.EmailLog
	var recipientID *uuid.UUID
	var status string
	var errMsg *string
	if err := row.Scan(&l.ID, &l.JobID, &l.Template, &recipientID, &l.RecipientEmail, &l.RecipientName,
		&l.Subject, &l.Body, &status, &l.Attempt, &errMsg, &l.CreatedAt); err != nil {
		return nil, err
	}
	if recipientID != nil {
		l.RecipientID = *recipientID
	}
	if errMsg != nil {
		l.ErrorMessage = *errMsg
	}
	l.Status = models.EmailStatus(status)
	return &l, nil
}

// RecordEmail inserts a delivery attempt.
func (r *Repository) RecordEmail(ctx context.Context, l *models.EmailLog) error {
	const q = `INSERT INTO email_logs (job_id, template, recipient_id, recipient_email, recipient_name, subject, body, status, attempt, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`
	var recipientID *uuid.UUID
	if l.RecipientID != uuid.Nil {
		recipientID = &l.RecipientID
	}
	var errMsg *string
	if l.ErrorMessage != "" {
		errMsg = &l.ErrorMessage
	}
	err := r.pool.QueryRow(ctx, q, l.JobID, l.Template, recipientID, l.RecipientEmail, l.RecipientName,
		l.Subject, l.Body, string(l.Status), l.Attempt, errMsg).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// GetEmailLog returns one log entry.
func (r *Repository) GetEmailLog(ctx context.Context, id uuid.UUID) (*models.EmailLog, error) {
	l, err := scanLog(r.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM email_logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("email log not found")
	}
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return l, nil
}

// ListEmailLogs returns logs, newest first.
func (r *Repository) ListEmailLogs(ctx context.Context, f models.EmailLogFilter) ([]models.EmailLog, error) {
	q := `SELECT ` + logColumns + ` FROM email_logs`
	var args []any
	if f.Status != nil {
		args = append(args, string(*f.Status))
		q += ` WHERE status = $1`
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer rows.Close()
	list := []models.EmailLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, apperr.Upstream(err)
		}
		list = append(list, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err)
	}
	return list, nil
}
