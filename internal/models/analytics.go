package models

// SponsorshipTotals aggregates sponsorships by status.
type SponsorshipTotals struct {
	ByStatus       map[SponsorshipStatus]int `json:"by_status"`
	AcceptedAmount float64                   `json:"accepted_amount"`
}
