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
	"coralbay/estate/internal/tasks"
	"coralbay/estate/internal/utils"
)

// ModerationHandler handles the manager portal's moderation endpoints.
type ModerationHandler struct {
	listingService services.IListingService
	taskClient     IAsynqClient
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(listingService services.IListingService, taskClient IAsynqClient) *ModerationHandler {
	return &ModerationHandler{
		listingService: listingService,
		taskClient:     taskClient,
	}
}

// Queue handles GET /v1/manager/queue
func (h *ModerationHandler) Queue(c *gin.Context) {
	listings, err := h.listingService.FindPendingListings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch moderation queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": listings})
}

type decisionRequest struct {
	Status models.Status `json:"status"`
}

// Decide handles POST /v1/manager/listings/:id/decision
func (h *ModerationHandler) Decide(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	listing, err := h.listingService.SetListingStatus(c.Request.Context(), listingID, req.Status, actor)
	if err != nil {
		switch {
		case services.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrManagerRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "Manager role required"})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record decision"})
		}
		return
	}

	// Notification is best effort; the decision itself already stuck.
	if task, taskErr := tasks.NewDecisionNotifyTask(listing.ID, listing.Status, actor.Name); taskErr == nil {
		if _, enqErr := h.taskClient.EnqueueContext(c.Request.Context(), task); enqErr != nil {
			log.Printf("WARNING: Failed to enqueue decision notification for listing %s: %v", listing.ID.String(), enqErr)
		}
	}

	c.JSON(http.StatusOK, listing)
}
