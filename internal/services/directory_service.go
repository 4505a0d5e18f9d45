package services

import (
	"context"
	"fmt"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
)

// IDirectoryService defines the interface for catalog filter metadata.
type IDirectoryService interface {
	CatalogFilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

// directoryService implements IDirectoryService.
type directoryService struct {
	repo repository.ListingRepository
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(repo repository.ListingRepository) IDirectoryService {
	return &directoryService{repo: repo}
}

// CatalogFilterOptions collects the distinct filterable values present in
// approved listings so the catalog UI only offers filters that can match.
func (s *directoryService) CatalogFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	cities, err := s.repo.DistinctApproved(ctx, "city")
	if err != nil {
		return nil, fmt.Errorf("failed to collect cities: %w", err)
	}
	rooms, err := s.repo.DistinctApproved(ctx, "rooms")
	if err != nil {
		return nil, fmt.Errorf("failed to collect rooms: %w", err)
	}
	types, err := s.repo.DistinctApproved(ctx, "property_type")
	if err != nil {
		return nil, fmt.Errorf("failed to collect property types: %w", err)
	}

	return &models.FilterOptions{
		Cities:        cities,
		Rooms:         rooms,
		PropertyTypes: types,
	}, nil
}
