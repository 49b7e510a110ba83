package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus is the outcome of one delivery attempt.
type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

func (s EmailStatus) Valid() bool { return s == EmailSent || s == EmailFailed }

// EmailLog records one delivery attempt made by the worker.
type EmailLog struct {
	ID             uuid.UUID   `json:"id"`
	JobID          string      `json:"job_id"`
	Template       string      `json:"template"`
	RecipientID    uuid.UUID   `json:"recipient_id"`
	RecipientEmail string      `json:"recipient_email"`
	RecipientName  string      `json:"recipient_name,omitempty"`
	Subject        string      `json:"subject"`
	Body           string      `json:"body"`
	Status         EmailStatus `json:"status"`
	Attempt        int         `json:"attempt"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// EmailLogFilter narrows email log listings. Zero Limit means no limit.
type EmailLogFilter struct {
	Status *EmailStatus
	Limit  int
}
