package models

import (
	"time"

	"github.com/google/uuid"
)

// Sponsorship is a funding negotiation between a manager and a sponsor.
type Sponsorship struct {
	ID          uuid.UUID         `json:"id"`
	EventID     uuid.UUID         `json:"event_id"`
	SponsorID   uuid.UUID         `json:"sponsor_id"`
	Amount      float64           `json:"amount"`
	Status      SponsorshipStatus `json:"status"`
	ManagerNote string            `json:"manager_note,omitempty"`
	SponsorNote string            `json:"sponsor_note,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SponsorshipView adds event and sponsor details for listings.
type SponsorshipView struct {
	Sponsorship
	EventTitle  string    `json:"event_title"`
	EventDate   Date      `json:"event_date"`
	ManagerID   uuid.UUID `json:"manager_id"`
	SponsorName string    `json:"sponsor_name"`
	CompanyName string    `json:"company_name"`
}

// SponsorshipRevision is a snapshot written on every sponsorship change.
type SponsorshipRevision struct {
	ID            int64             `json:"id"`
	SponsorshipID uuid.UUID         `json:"sponsorship_id"`
	Amount        float64           `json:"amount"`
	Status        SponsorshipStatus `json:"status"`
	ManagerNote   string            `json:"manager_note,omitempty"`
	SponsorNote   string            `json:"sponsor_note,omitempty"`
	ChangedBy     uuid.UUID         `json:"changed_by"`
	ChangedAt     time.Time         `json:"changed_at"`
}

// RevisionOf snapshots s as changed by actor.
func RevisionOf(s *Sponsorship, actor uuid.UUID) SponsorshipRevision {
	return SponsorshipRevision{
		SponsorshipID: s.ID,
		Amount:        s.Amount,
		Status:        s.Status,
		ManagerNote:   s.ManagerNote,
		SponsorNote:   s.SponsorNote,
		ChangedBy:     actor,
		ChangedAt:     time.Now(),
	}
}
