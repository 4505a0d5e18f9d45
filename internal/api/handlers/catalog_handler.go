package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/services"
	"coralbay/estate/internal/utils"
)

// CatalogHandler handles the public catalog endpoints.
type CatalogHandler struct {
	listingService   services.IListingService
	directoryService services.IDirectoryService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(listingService services.IListingService, directoryService services.IDirectoryService) *CatalogHandler {
	return &CatalogHandler{
		listingService:   listingService,
		directoryService: directoryService,
	}
}

// Search handles GET /v1/catalog with optional city/rooms/type filters.
func (h *CatalogHandler) Search(c *gin.Context) {
	filter := models.CatalogFilter{
		City:         c.Query("city"),
		Rooms:        c.Query("rooms"),
		PropertyType: c.Query("type"),
	}

	listings, err := h.listingService.SearchCatalog(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// FilterOptions handles GET /v1/catalog/filters
func (h *CatalogHandler) FilterOptions(c *gin.Context) {
	options, err := h.directoryService.CatalogFilterOptions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch filter options"})
		return
	}

	c.JSON(http.StatusOK, options)
}

// GetListing handles GET /v1/listing/:id. Only approved listings are public.
func (h *CatalogHandler) GetListing(c *gin.Context) {
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		}
		return
	}

	if listing.Status != models.StatusApproved {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}
