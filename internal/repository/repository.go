package repository

import (
	"context"
	"errors"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/utils"
)

// ErrNotFound is returned when no document matched the given criteria.
// For conditional updates it also covers precondition misses (wrong owner,
// wrong status, photo cap reached); callers diagnose via FindByID.
var ErrNotFound = errors.New("not found")

// ListingRepository abstracts listing storage. Implementations must apply
// conditional updates atomically and must return listings in insertion order.
type ListingRepository interface {
	Insert(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id utils.SixID) (*models.Listing, error)

	// SetStatus unconditionally moves a listing to the given status and
	// stamps the decision audit fields. Returns the updated listing.
	SetStatus(ctx context.Context, id utils.SixID, status models.Status, decidedBy string) (*models.Listing, error)

	// Resubmit replaces the agent-supplied fields and moves the listing back
	// to pending, but only when it belongs to agentID and is in revision.
	Resubmit(ctx context.Context, id utils.SixID, agentID string, input models.ListingInput) (*models.Listing, error)

	// AppendPhoto adds a photo key, but only while the listing holds fewer
	// than maxPhotos.
	AppendPhoto(ctx context.Context, id utils.SixID, photoKey string, maxPhotos int) (*models.Listing, error)

	FindByAgent(ctx context.Context, agentID string) ([]models.Listing, error)
	FindByStatus(ctx context.Context, status models.Status) ([]models.Listing, error)
	SearchApproved(ctx context.Context, filter models.CatalogFilter) ([]models.Listing, error)

	// DistinctApproved returns the sorted distinct non-empty values of a
	// listing field across approved listings. Field names follow the BSON
	// tags ("city", "rooms", "property_type").
	DistinctApproved(ctx context.Context, field string) ([]string, error)
}

// MessageRepository abstracts chat message storage.
type MessageRepository interface {
	Insert(ctx context.Context, msg *models.Message) error

	// FindByAgent returns an agent's conversation thread in send order.
	FindByAgent(ctx context.Context, agentID string) ([]models.Message, error)
}
