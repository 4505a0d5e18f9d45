package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/utils"
)

func insertListing(t *testing.T, repo ListingRepository, agentID string, status models.Status) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:        utils.NewSixID(),
		AgentID:   agentID,
		Title:     "Sea Villa",
		Price:     "500000",
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(context.Background(), listing))
	return listing
}

func TestMemoryFindByID(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := insertListing(t, repo, "A1", models.StatusPending)

	found, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, found.ID)

	_, err = repo.FindByID(ctx, utils.NewSixID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFindByIDReturnsClone(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := insertListing(t, repo, "A1", models.StatusPending)

	found, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)

	// Mutating the returned value must not affect the store.
	found.Title = "Tampered"
	found.Photos = append(found.Photos, "photos/x.jpg")

	again, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sea Villa", again.Title)
	assert.Empty(t, again.Photos)
}

func TestMemorySetStatus(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := insertListing(t, repo, "A1", models.StatusPending)

	updated, err := repo.SetStatus(ctx, listing.ID, models.StatusApproved, "000")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, "000", updated.DecidedBy)
	require.NotNil(t, updated.DecidedAt)
	assert.True(t, updated.UpdatedAt.After(listing.UpdatedAt) || updated.UpdatedAt.Equal(listing.UpdatedAt))

	_, err = repo.SetStatus(ctx, utils.NewSixID(), models.StatusApproved, "000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryResubmitPreconditions(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	input := models.ListingInput{Title: "Sea Villa II", Price: "450000"}

	// Wrong status.
	pending := insertListing(t, repo, "A1", models.StatusPending)
	_, err := repo.Resubmit(ctx, pending.ID, "A1", input)
	assert.ErrorIs(t, err, ErrNotFound)

	// Wrong agent.
	revision := insertListing(t, repo, "A1", models.StatusRevision)
	_, err = repo.Resubmit(ctx, revision.ID, "B2", input)
	assert.ErrorIs(t, err, ErrNotFound)

	// Matching precondition flips the status and replaces the fields.
	updated, err := repo.Resubmit(ctx, revision.ID, "A1", input)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, "Sea Villa II", updated.Title)
	assert.Equal(t, "450000", updated.Price)
}

func TestMemoryAppendPhotoCap(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := insertListing(t, repo, "A1", models.StatusPending)

	updated, err := repo.AppendPhoto(ctx, listing.ID, "photos/1.jpg", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/1.jpg"}, updated.Photos)

	_, err = repo.AppendPhoto(ctx, listing.ID, "photos/2.jpg", 2)
	require.NoError(t, err)

	// The cap is enforced at the store level.
	_, err = repo.AppendPhoto(ctx, listing.ID, "photos/3.jpg", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Len(t, found.Photos, 2)
}

func TestMemoryFindByAgentOrder(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	first := insertListing(t, repo, "A1", models.StatusPending)
	insertListing(t, repo, "B2", models.StatusPending)
	second := insertListing(t, repo, "A1", models.StatusApproved)

	listings, err := repo.FindByAgent(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, first.ID, listings[0].ID)
	assert.Equal(t, second.ID, listings[1].ID)

	none, err := repo.FindByAgent(ctx, "C3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryFindByStatus(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	insertListing(t, repo, "A1", models.StatusApproved)
	pending := insertListing(t, repo, "B2", models.StatusPending)

	listings, err := repo.FindByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, pending.ID, listings[0].ID)
}

func TestMemorySearchApproved(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	approved := &models.Listing{
		ID: utils.NewSixID(), AgentID: "A1", Title: "Villa", Price: "1",
		City: "Pattaya", Rooms: "3", PropertyType: "villa", Status: models.StatusApproved,
	}
	require.NoError(t, repo.Insert(ctx, approved))
	pending := &models.Listing{
		ID: utils.NewSixID(), AgentID: "A1", Title: "Villa", Price: "1",
		City: "Pattaya", Rooms: "3", PropertyType: "villa", Status: models.StatusPending,
	}
	require.NoError(t, repo.Insert(ctx, pending))

	got, err := repo.SearchApproved(ctx, models.CatalogFilter{City: "Pattaya"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, approved.ID, got[0].ID)

	got, err = repo.SearchApproved(ctx, models.CatalogFilter{City: "Phuket"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryDistinctApproved(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	for _, city := range []string{"Phuket", "Pattaya", "Pattaya", ""} {
		listing := &models.Listing{
			ID: utils.NewSixID(), AgentID: "A1", Title: "t", Price: "1",
			City: city, Status: models.StatusApproved,
		}
		require.NoError(t, repo.Insert(ctx, listing))
	}

	cities, err := repo.DistinctApproved(ctx, "city")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pattaya", "Phuket"}, cities, "distinct, sorted, blanks dropped")
}
