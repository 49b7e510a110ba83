package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category groups event subtypes; managers and employees belong to one.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// Subtype is a kind of event within a category.
type Subtype struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
	Name       string `json:"name" validate:"required,max=120"`
}

// Venue is a place where events happen.
type Venue struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required,max=160"`
	Address  string `json:"address" validate:"required,max=300"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	ImageKey string `json:"image_key,omitempty"`
}

// MasterDataType names the reference table a request targets.
type MasterDataType string

const (
	MasterDataVenue    MasterDataType = "venue"
	MasterDataCategory MasterDataType = "category"
	MasterDataSubtype  MasterDataType = "subtype"
)

func (t MasterDataType) Valid() bool {
	return t == MasterDataVenue || t == MasterDataCategory || t == MasterDataSubtype
}

// MasterDataRequest is a manager's request to add reference data.
type MasterDataRequest struct {
	ID              uuid.UUID        `json:"id"`
	RequestedBy     uuid.UUID        `json:"requested_by"`
	Type            MasterDataType   `json:"type"`
	Payload         json.RawMessage  `json:"payload"`
	Note            string           `json:"note,omitempty"`
	Status          MasterDataStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ReviewedBy      *uuid.UUID       `json:"reviewed_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
}

// MasterDataFilter narrows master-data request listings.
type MasterDataFilter struct {
	Statuses    []MasterDataStatus
	RequestedBy *uuid.UUID
	OldestFirst bool
}

// Match reports whether r satisfies the filter.
func (f MasterDataFilter) Match(r *MasterDataRequest) bool {
	if f.RequestedBy != nil && r.RequestedBy != *f.RequestedBy {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// Record decodes the payload into the reference row it describes: a
// *Category, *Subtype or *Venue depending on Type.
func (r *MasterDataRequest) Record() (any, error) {
	var rec any
	switch r.Type {
	case MasterDataCategory:
		rec = &Category{}
	case MasterDataSubtype:
		rec = &Subtype{}
	case MasterDataVenue:
		rec = &Venue{}
	default:
		return nil, fmt.Errorf("unknown master data type %q", r.Type)
	}
	if err := json.Unmarshal(r.Payload, rec); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", r.Type, err)
	}
	return rec, nil
}
