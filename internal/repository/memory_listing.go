package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/utils"
)

// memoryListingRepository keeps listings in an ordered slice guarded by a
// mutex. It backs unit tests and the transient dev mode; semantics mirror
// the Mongo implementation, including atomicity of conditional updates.
type memoryListingRepository struct {
	mu       sync.Mutex
	listings []*models.Listing
	index    map[utils.SixID]*models.Listing
}

// NewMemoryListingRepository creates an empty in-memory listing store.
func NewMemoryListingRepository() ListingRepository {
	return &memoryListingRepository{
		index: make(map[utils.SixID]*models.Listing),
	}
}

func (r *memoryListingRepository) Insert(_ context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneListing(listing)
	r.listings = append(r.listings, stored)
	r.index[stored.ID] = stored
	return nil
}

func (r *memoryListingRepository) FindByID(_ context.Context, id utils.SixID) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneListing(stored), nil
}

func (r *memoryListingRepository) SetStatus(_ context.Context, id utils.SixID, status models.Status, decidedBy string) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}

	now := time.Now().UTC()
	stored.Status = status
	stored.UpdatedAt = now
	stored.DecidedBy = decidedBy
	stored.DecidedAt = &now
	return cloneListing(stored), nil
}

func (r *memoryListingRepository) Resubmit(_ context.Context, id utils.SixID, agentID string, input models.ListingInput) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.index[id]
	if !ok || stored.AgentID != agentID || stored.Status != models.StatusRevision {
		return nil, ErrNotFound
	}

	applyInput(stored, input)
	stored.Status = models.StatusPending
	stored.UpdatedAt = time.Now().UTC()
	return cloneListing(stored), nil
}

func (r *memoryListingRepository) AppendPhoto(_ context.Context, id utils.SixID, photoKey string, maxPhotos int) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.index[id]
	if !ok || len(stored.Photos) >= maxPhotos {
		return nil, ErrNotFound
	}

	stored.Photos = append(stored.Photos, photoKey)
	stored.UpdatedAt = time.Now().UTC()
	return cloneListing(stored), nil
}

func (r *memoryListingRepository) FindByAgent(_ context.Context, agentID string) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Listing
	for _, stored := range r.listings {
		if stored.AgentID == agentID {
			result = append(result, *cloneListing(stored))
		}
	}
	return result, nil
}

func (r *memoryListingRepository) FindByStatus(_ context.Context, status models.Status) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Listing
	for _, stored := range r.listings {
		if stored.Status == status {
			result = append(result, *cloneListing(stored))
		}
	}
	return result, nil
}

func (r *memoryListingRepository) SearchApproved(_ context.Context, filter models.CatalogFilter) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Listing
	for _, stored := range r.listings {
		if stored.Status == models.StatusApproved && filter.Matches(stored) {
			result = append(result, *cloneListing(stored))
		}
	}
	return result, nil
}

func (r *memoryListingRepository) DistinctApproved(_ context.Context, field string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	for _, stored := range r.listings {
		if stored.Status != models.StatusApproved {
			continue
		}
		var value string
		switch field {
		case "city":
			value = stored.City
		case "district":
			value = stored.District
		case "rooms":
			value = stored.Rooms
		case "property_type":
			value = stored.PropertyType
		}
		if value != "" {
			seen[value] = true
		}
	}

	values := make([]string, 0, len(seen))
	for value := range seen {
		values = append(values, value)
	}
	sort.Strings(values)
	return values, nil
}

// cloneListing copies a listing so callers never share internal state.
func cloneListing(l *models.Listing) *models.Listing {
	clone := *l
	if l.Photos != nil {
		clone.Photos = make([]string, len(l.Photos))
		copy(clone.Photos, l.Photos)
	}
	if l.DecidedAt != nil {
		decidedAt := *l.DecidedAt
		clone.DecidedAt = &decidedAt
	}
	return &clone
}

// applyInput overwrites the agent-supplied fields of a stored listing.
func applyInput(l *models.Listing, input models.ListingInput) {
	l.Title = input.Title
	l.Price = input.Price
	l.Description = input.Description
	l.LocationURL = input.LocationURL
	l.City = input.City
	l.District = input.District
	l.Rooms = input.Rooms
	l.View = input.View
	l.PropertyType = input.PropertyType
	l.Pool = input.Pool
	if input.Photos != nil {
		l.Photos = make([]string, len(input.Photos))
		copy(l.Photos, input.Photos)
	}
}
