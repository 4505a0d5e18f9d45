package models

import (
	"time"

	"coralbay/estate/internal/utils"
)

// Status is the moderation state of a listing.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusRevision Status = "revision"
)

// Valid reports whether s is one of the known listing statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusRevision:
		return true
	}
	return false
}

// IsDecision reports whether s is a status a manager may set.
// Pending is reserved for creation and resubmission.
func (s Status) IsDecision() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusRevision:
		return true
	}
	return false
}

// Listing represents a property listing submitted by an agent.
type Listing struct {
	ID           utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
	AgentID      string      `bson:"agent_id" json:"agent_id"`
	Title        string      `bson:"title" json:"title"`
	Price        string      `bson:"price" json:"price"`
	Description  string      `bson:"description" json:"description"`
	LocationURL  string      `bson:"location_url,omitempty" json:"location_url,omitempty"`
	City         string      `bson:"city" json:"city"`
	District     string      `bson:"district" json:"district"`
	Rooms        string      `bson:"rooms" json:"rooms"`
	View         string      `bson:"view" json:"view"`
	PropertyType string      `bson:"property_type" json:"property_type"`
	Pool         string      `bson:"pool" json:"pool"`
	Photos       []string    `bson:"photos" json:"photos"` // S3 keys
	Status       Status      `bson:"status" json:"status"`
	CreatedAt    time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updated_at"`
	DecidedBy    string      `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecidedAt    *time.Time  `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
}

// ListingInput carries the agent-supplied fields of a listing.
type ListingInput struct {
	Title        string   `json:"title"`
	Price        string   `json:"price"`
	Description  string   `json:"description"`
	LocationURL  string   `json:"location_url"`
	City         string   `json:"city"`
	District     string   `json:"district"`
	Rooms        string   `json:"rooms"`
	View         string   `json:"view"`
	PropertyType string   `json:"property_type"`
	Pool         string   `json:"pool"`
	Photos       []string `json:"photos"`
}

// CatalogFilter narrows the public catalog. Empty fields match everything.
type CatalogFilter struct {
	City         string `form:"city" json:"city"`
	Rooms        string `form:"rooms" json:"rooms"`
	PropertyType string `form:"type" json:"type"`
}

// Matches reports whether a listing satisfies every supplied filter field.
func (f CatalogFilter) Matches(l *Listing) bool {
	if f.City != "" && l.City != f.City {
		return false
	}
	if f.Rooms != "" && l.Rooms != f.Rooms {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	return true
}

// FilterOptions lists the distinct values available to catalog filters,
// collected from approved listings only.
type FilterOptions struct {
	Cities        []string `json:"cities"`
	Rooms         []string `json:"rooms"`
	PropertyTypes []string `json:"property_types"`
}
