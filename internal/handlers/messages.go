package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-platform/internal/repositories"
)

// allowedReactions is the fixed emoji vocabulary for reaction tallies.
var allowedReactions = map[string]bool{
	"❤️": true,
	"😂": true,
	"😮": true,
	"😢": true,
	"👍": true,
}

// MessageHandler serves message history and reactions.
type MessageHandler struct {
	messages repositories.MessageRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// ListMessages returns a room's messages ordered by timestamp ascending.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	roomName := c.Query("room")
	if roomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room query parameter required"})
		return
	}

	msgs, err := h.messages.ListByRoomName(c.Request.Context(), roomName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// React increments one reaction counter on a message and returns the
// updated tally. Counters are anonymous: the same user may react to the
// same message repeatedly and every reaction counts.
func (h *MessageHandler) React(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Reaction string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !allowedReactions[req.Reaction] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reaction not allowed"})
		return
	}

	tally, err := h.messages.AddReaction(c.Request.Context(), messageID, req.Reaction)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record reaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reactions": tally})
}
