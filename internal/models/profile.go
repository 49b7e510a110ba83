package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a principal's role in the platform.
type Role string

const (
	RoleClient           Role = "client"
	RoleEmployee         Role = "employee"
	RoleManager          Role = "manager"
	RoleSponsor          Role = "sponsor"
	RoleChiefCoordinator Role = "chief_coordinator"
)

// Roles lists every role in display order.
var Roles = []Role{RoleClient, RoleEmployee, RoleManager, RoleSponsor, RoleChiefCoordinator}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// NeedsCategory reports whether profiles of this role belong to a category.
func (r Role) NeedsCategory() bool {
	return r == RoleManager || r == RoleEmployee
}

// VerificationStatus is the approval state of a profile.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Profile is a registered principal. ID equals the identity provider subject.
type Profile struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	FullName           string             `json:"full_name"`
	Role               Role               `json:"role"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CategoryID         *int64             `json:"category_id,omitempty"`
	CompanyName        string             `json:"company_name,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Verified reports whether the profile has been approved.
func (p *Profile) Verified() bool {
	return p.VerificationStatus == VerificationVerified
}

// SameCategory reports whether both profiles carry the same non-nil category.
func (p *Profile) SameCategory(other *Profile) bool {
	return p.CategoryID != nil && other.CategoryID != nil && *p.CategoryID == *other.CategoryID
}

// ProfileFilter narrows profile listings. Nil fields do not filter.
type ProfileFilter struct {
	Roles      []Role
	Status     *VerificationStatus
	CategoryID *int64
}

// Match reports whether p satisfies the filter.
func (f ProfileFilter) Match(p *Profile) bool {
	if len(f.Roles) > 0 {
		found := false
		for _, r := range f.Roles {
			if p.Role == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && p.VerificationStatus != *f.Status {
		return false
	}
	if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
		return false
	}
	return true
}
