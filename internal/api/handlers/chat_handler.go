package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coralbay/estate/internal/api/middleware"
	"coralbay/estate/internal/services"
)

// ChatHandler handles the agent/manager conversation endpoints.
type ChatHandler struct {
	chatService services.IChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService services.IChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatPostRequest struct {
	Body string `json:"body"`
}

// threadAgentID resolves which agent's thread a request targets: agents get
// their own thread, managers pick one via the :agent_id path parameter.
func threadAgentID(c *gin.Context) string {
	if agentID := c.Param("agent_id"); agentID != "" {
		return agentID
	}
	actor, _ := middleware.ActorFromContext(c)
	return actor.ID
}

// List handles GET /v1/agent/chat and GET /v1/manager/chat/:agent_id
func (h *ChatHandler) List(c *gin.Context) {
	messages, err := h.chatService.ListConversation(c.Request.Context(), threadAgentID(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// Post handles POST /v1/agent/chat and POST /v1/manager/chat/:agent_id
func (h *ChatHandler) Post(c *gin.Context) {
	actor, _ := middleware.ActorFromContext(c)

	var req chatPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	msg, err := h.chatService.PostMessage(c.Request.Context(), threadAgentID(c), actor, req.Body)
	if err != nil {
		switch {
		case services.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotConversationMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this conversation"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post message"})
		}
		return
	}

	c.JSON(http.StatusCreated, msg)
}
