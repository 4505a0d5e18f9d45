package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/utils"
)

func TestCatalogFilterOptions(t *testing.T) {
	repo := repository.NewMemoryListingRepository()
	svc := NewDirectoryService(repo)
	ctx := context.Background()

	insert := func(city, rooms, propertyType string, status models.Status) {
		listing := &models.Listing{
			ID:           utils.NewSixID(),
			AgentID:      "A1",
			Title:        "t",
			Price:        "1",
			City:         city,
			Rooms:        rooms,
			PropertyType: propertyType,
			Status:       status,
		}
		require.NoError(t, repo.Insert(ctx, listing))
	}

	insert("Pattaya", "3", "villa", models.StatusApproved)
	insert("Phuket", "1", "condo", models.StatusApproved)
	insert("Pattaya", "1", "condo", models.StatusApproved)
	// Non-approved listings must not contribute filter values.
	insert("Bangkok", "5", "penthouse", models.StatusPending)
	// Blank fields are skipped.
	insert("", "", "", models.StatusApproved)

	options, err := svc.CatalogFilterOptions(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pattaya", "Phuket"}, options.Cities)
	assert.Equal(t, []string{"1", "3"}, options.Rooms)
	assert.Equal(t, []string{"condo", "villa"}, options.PropertyTypes)
}

func TestCatalogFilterOptionsEmpty(t *testing.T) {
	svc := NewDirectoryService(repository.NewMemoryListingRepository())

	options, err := svc.CatalogFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, options.Cities)
	assert.Empty(t, options.Rooms)
	assert.Empty(t, options.PropertyTypes)
}
