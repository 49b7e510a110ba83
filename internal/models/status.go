package models

// transitions maps a state to the states it may move to. States without an
// entry are terminal.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allowed(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t transitions[S]) terminal(s S) bool {
	return len(t[s]) == 0
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventConsideration EventStatus = "consideration"
	EventInProgress    EventStatus = "in_progress"
	EventCompleted     EventStatus = "completed"
	EventCancelled     EventStatus = "cancelled"
)

var eventTransitions = transitions[EventStatus]{
	EventConsideration: {EventInProgress, EventCancelled},
	EventInProgress:    {EventCompleted, EventCancelled},
}

// EventStatuses lists every event status.
var EventStatuses = []EventStatus{EventConsideration, EventInProgress, EventCompleted, EventCancelled}

func (s EventStatus) Valid() bool {
	for _, known := range EventStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s EventStatus) CanTransition(to EventStatus) bool { return eventTransitions.allowed(s, to) }
func (s EventStatus) Terminal() bool                    { return eventTransitions.terminal(s) }

// ModificationStatus is the state of a modification request.
type ModificationStatus string

const (
	ModificationPending  ModificationStatus = "pending"
	ModificationAccepted ModificationStatus = "accepted"
	ModificationRejected ModificationStatus = "rejected"
)

var modificationTransitions = transitions[ModificationStatus]{
	ModificationPending: {ModificationAccepted, ModificationRejected},
}

func (s ModificationStatus) CanTransition(to ModificationStatus) bool {
	return modificationTransitions.allowed(s, to)
}

// AssignmentStatus is the state of a staff assignment.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentRejected AssignmentStatus = "rejected"
)

var assignmentTransitions = transitions[AssignmentStatus]{
	AssignmentPending: {AssignmentAccepted, AssignmentRejected},
}

func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	return assignmentTransitions.allowed(s, to)
}

// SponsorshipStatus is the negotiation state of a sponsorship.
type SponsorshipStatus string

const (
	SponsorshipPending     SponsorshipStatus = "pending"
	SponsorshipNegotiating SponsorshipStatus = "negotiating"
	SponsorshipAccepted    SponsorshipStatus = "accepted"
	SponsorshipRejected    SponsorshipStatus = "rejected"
)

var sponsorshipTransitions = transitions[SponsorshipStatus]{
	SponsorshipPending:     {SponsorshipNegotiating, SponsorshipAccepted, SponsorshipRejected},
	SponsorshipNegotiating: {SponsorshipNegotiating, SponsorshipPending, SponsorshipAccepted, SponsorshipRejected},
}

func (s SponsorshipStatus) Valid() bool {
	switch s {
	case SponsorshipPending, SponsorshipNegotiating, SponsorshipAccepted, SponsorshipRejected:
		return true
	}
	return false
}

func (s SponsorshipStatus) CanTransition(to SponsorshipStatus) bool {
	return sponsorshipTransitions.allowed(s, to)
}

func (s SponsorshipStatus) Terminal() bool { return sponsorshipTransitions.terminal(s) }

// MasterDataStatus is the review state of a master-data request.
type MasterDataStatus string

const (
	MasterDataPending  MasterDataStatus = "pending"
	MasterDataApproved MasterDataStatus = "approved"
	MasterDataRejected MasterDataStatus = "rejected"
)

var masterDataTransitions = transitions[MasterDataStatus]{
	MasterDataPending: {MasterDataApproved, MasterDataRejected},
}

func (s MasterDataStatus) CanTransition(to MasterDataStatus) bool {
	return masterDataTransitions.allowed(s, to)
}

var verificationTransitions = transitions[VerificationStatus]{
	VerificationPending:  {VerificationVerified, VerificationRejected},
	VerificationVerified: {VerificationRejected},
	VerificationRejected: {VerificationVerified},
}

func (s VerificationStatus) CanTransition(to VerificationStatus) bool {
	return verificationTransitions.allowed(s, to)
}
