package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coralbay/estate/internal/config"
	"coralbay/estate/internal/db"
	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/utils"
)

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	CreateListing(ctx context.Context, agentID string, input models.ListingInput) (*models.Listing, error)
	FindListingByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error)
	SetListingStatus(ctx context.Context, listingID utils.SixID, status models.Status, actor models.Actor) (*models.Listing, error)
	ResubmitListing(ctx context.Context, listingID utils.SixID, agentID string, input *models.ListingInput) (*models.Listing, error)
	AttachPhoto(ctx context.Context, listingID utils.SixID, photoKey string) (*models.Listing, error)
	FindListingsByAgent(ctx context.Context, agentID string) ([]models.Listing, error)
	FindPendingListings(ctx context.Context) ([]models.Listing, error)
	SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.Listing, error)
}

// listingService implements IListingService.
type listingService struct {
	repo     repository.ListingRepository
	cfg      *config.Config
	settings IConfigService // optional, may be nil
}

// NewListingService creates a new ListingService. settings may be nil, in
// which case limits come from the static config only.
func NewListingService(repo repository.ListingRepository, cfg *config.Config, settings IConfigService) IListingService {
	return &listingService{repo: repo, cfg: cfg, settings: settings}
}

// maxPhotos returns the photo cap, preferring a dynamic override.
func (s *listingService) maxPhotos(ctx context.Context) int {
	if s.settings != nil {
		return s.settings.GetInt(ctx, "MAX_LISTING_PHOTOS", s.cfg.MaxListingPhotos)
	}
	return s.cfg.MaxListingPhotos
}

// validateInput checks the agent-supplied fields and normalizes title/price.
func (s *listingService) validateInput(ctx context.Context, input *models.ListingInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Price = strings.TrimSpace(input.Price)

	if input.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if input.Price == "" {
		return &ValidationError{Field: "price", Reason: "must not be empty"}
	}
	if max := s.maxPhotos(ctx); len(input.Photos) > max {
		return &ValidationError{Field: "photos", Reason: fmt.Sprintf("at most %d photos allowed", max)}
	}
	return nil
}

// CreateListing validates the input and stores a new pending listing owned by
// agentID. The ID generation is retried on duplicate key collisions.
func (s *listingService) CreateListing(ctx context.Context, agentID string, input models.ListingInput) (*models.Listing, error) {
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			ID:           utils.NewSixID(),
			AgentID:      agentID,
			Title:        input.Title,
			Price:        input.Price,
			Description:  input.Description,
			LocationURL:  input.LocationURL,
			City:         input.City,
			District:     input.District,
			Rooms:        input.Rooms,
			View:         input.View,
			PropertyType: input.PropertyType,
			Pool:         input.Pool,
			Photos:       append([]string{}, input.Photos...),
			Status:       models.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Insert(ctx, newListing)
	}

	if err := db.Try(operation); err != nil {
		listingIDStr := "<unknown>"
		if newListing != nil {
			listingIDStr = newListing.ID.String()
		}
		return nil, fmt.Errorf("failed to insert new listing for agent %s (last attempted listing ID: %s) after multiple retries: %w",
			agentID, listingIDStr, err)
	}

	return newListing, nil
}

// FindListingByID finds a listing by its ID regardless of status.
// It does NOT check ownership; callers gate visibility.
func (s *listingService) FindListingByID(ctx context.Context, listingID utils.SixID) (*models.Listing, error) {
	return s.repo.FindByID(ctx, listingID)
}

// SetListingStatus records a moderation decision. Only managers may decide,
// and the target status must be a decision status (never pending). The source
// status is deliberately unrestricted so managers can correct earlier
// decisions; setting the current status again is a no-op apart from the
// audit fields.
func (s *listingService) SetListingStatus(ctx context.Context, listingID utils.SixID, status models.Status, actor models.Actor) (*models.Listing, error) {
	if !actor.IsManager() {
		return nil, ErrManagerRequired
	}
	if !status.IsDecision() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not a valid decision", status)}
	}

	listing, err := s.repo.SetStatus(ctx, listingID, status, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set status of listing %s: %w", listingID.String(), err)
	}
	return listing, nil
}

// ResubmitListing moves a listing from revision back to pending. When input
// is non-nil the agent-supplied fields are replaced, under the same
// validation as creation. Only the owning agent may resubmit.
func (s *listingService) ResubmitListing(ctx context.Context, listingID utils.SixID, agentID string, input *models.ListingInput) (*models.Listing, error) {
	current, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if input == nil {
		// Keep the existing fields as the resubmission payload.
		fields := models.ListingInput{
			Title:        current.Title,
			Price:        current.Price,
			Description:  current.Description,
			LocationURL:  current.LocationURL,
			City:         current.City,
			District:     current.District,
			Rooms:        current.Rooms,
			View:         current.View,
			PropertyType: current.PropertyType,
			Pool:         current.Pool,
		}
		input = &fields
	}
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}

	listing, err := s.repo.Resubmit(ctx, listingID, agentID, *input)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to resubmit listing %s: %w", listingID.String(), err)
	}

	// The conditional update missed; diagnose against the current document.
	current, findErr := s.repo.FindByID(ctx, listingID)
	if findErr != nil {
		return nil, findErr
	}
	if current.AgentID != agentID {
		return nil, ErrNotListingOwner
	}
	return nil, ErrNotInRevision
}

// AttachPhoto appends a processed photo key, enforcing the photo cap
// atomically. Called by the image worker after normalization.
func (s *listingService) AttachPhoto(ctx context.Context, listingID utils.SixID, photoKey string) (*models.Listing, error) {
	max := s.maxPhotos(ctx)

	listing, err := s.repo.AppendPhoto(ctx, listingID, photoKey, max)
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to attach photo to listing %s: %w", listingID.String(), err)
	}

	// Either the listing is gone or the cap was reached; tell them apart.
	if _, findErr := s.repo.FindByID(ctx, listingID); findErr != nil {
		return nil, findErr
	}
	return nil, &ValidationError{Field: "photos", Reason: fmt.Sprintf("at most %d photos allowed", max)}
}

// FindListingsByAgent returns all of an agent's listings, any status, in
// submission order.
func (s *listingService) FindListingsByAgent(ctx context.Context, agentID string) ([]models.Listing, error) {
	return s.repo.FindByAgent(ctx, agentID)
}

// FindPendingListings returns the moderation queue in submission order.
func (s *listingService) FindPendingListings(ctx context.Context) ([]models.Listing, error) {
	return s.repo.FindByStatus(ctx, models.StatusPending)
}

// SearchCatalog returns approved listings matching the filter.
func (s *listingService) SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.Listing, error) {
	return s.repo.SearchApproved(ctx, filter)
}
