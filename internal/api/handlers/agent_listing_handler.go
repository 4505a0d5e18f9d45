package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coralbay/estate/internal/api/middleware"
	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/services"
	"coralbay/estate/internal/storage"
	"coralbay/estate/internal/tasks"
	"coralbay/estate/internal/utils"
)

// AgentListingHandler handles the agent portal's listing endpoints.
type AgentListingHandler struct {
	listingService services.IListingService
	storageService storage.IS3Storage
	taskClient     IAsynqClient
}

// NewAgentListingHandler creates a new AgentListingHandler.
func NewAgentListingHandler(listingService services.IListingService, storageService storage.IS3Storage, taskClient IAsynqClient) *AgentListingHandler {
	return &AgentListingHandler{
		listingService: listingService,
		storageService: storageService,
		taskClient:     taskClient,
	}
}

// CreateListing handles POST /v1/agent/listings
func (h *AgentListingHandler) CreateListing(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var input models.ListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), actor.ID, input)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// MyListings handles GET /v1/agent/listings
func (h *AgentListingHandler) MyListings(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	listings, err := h.listingService.FindListingsByAgent(c.Request.Context(), actor.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// ResubmitListing handles POST /v1/agent/listings/:id/resubmit.
// An empty body resubmits the listing as-is; a JSON body replaces the fields.
func (h *AgentListingHandler) ResubmitListing(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var input *models.ListingInput
	if c.Request.ContentLength > 0 {
		input = &models.ListingInput{}
		if err := c.ShouldBindJSON(input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	listing, err := h.listingService.ResubmitListing(c.Request.Context(), listingID, actor.ID, input)
	if err != nil {
		switch {
		case services.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, services.ErrNotListingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Listing belongs to another agent"})
		case errors.Is(err, services.ErrNotInRevision):
			c.JSON(http.StatusConflict, gin.H{"error": "Listing is not in revision"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resubmit listing"})
		}
		return
	}

	c.JSON(http.StatusOK, listing)
}

type photoUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// RequestPhotoUpload handles POST /v1/agent/listings/:id/photos.
// It returns a presigned S3 PUT URL the client uploads the photo to.
func (h *AgentListingHandler) RequestPhotoUpload(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req photoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and content_type are required"})
		return
	}

	// Ownership check before handing out an upload slot.
	listing, err := h.listingService.FindListingByID(c.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listing"})
		return
	}
	if listing.AgentID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Listing belongs to another agent"})
		return
	}

	uploadURL, photoKey, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), actor.ID, listingID.String(), req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": uploadURL, "photo_key": photoKey})
}

type photoCompleteRequest struct {
	PhotoKey string `json:"photo_key"`
}

// CompletePhotoUpload handles POST /v1/agent/listings/:id/photos/complete.
// It enqueues the normalization task; the image worker attaches the photo.
func (h *AgentListingHandler) CompletePhotoUpload(c *gin.Context) {
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req photoCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PhotoKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_key is required"})
		return
	}

	task, err := tasks.NewPhotoProcessTask(req.PhotoKey, listingID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create photo task"})
		return
	}

	taskInfo, err := h.taskClient.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue photo task"})
		return
	}

	log.Printf("Enqueued photo task %s for listing %s (key %s)", taskInfo.ID, listingID.String(), req.PhotoKey)
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskInfo.ID})
}
