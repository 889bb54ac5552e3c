package handler

import (
	"net/http"
	"strconv"

	"proconnect/backend/internal/delivery"
	"proconnect/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// MessageInput defines the structure for sending a direct message.
type MessageInput struct {
	ReceiverID uint   `json:"receiver_id" binding:"required" example:"2"`
	Content    string `json:"content" binding:"required" example:"hi"`
}

func newMessagePayloads(messages []models.Message) []delivery.MessagePayload {
	payloads := make([]delivery.MessagePayload, len(messages))
	for i, m := range messages {
		payloads[i] = delivery.NewMessagePayload(m)
	}
	return payloads
}

// SendMessage godoc
// @Summary      Send a direct message
// @Description  Persists a message to a connected user and pushes it to their live channel if registered.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body MessageInput true "Message"
// @Success      201  {object}  delivery.MessagePayload
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Users are not connected"
// @Router       /messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.delivery.Send(c.Request.Context(), currentUserID(c), input.ReceiverID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery.NewMessagePayload(*msg))
}

// GetConversation godoc
// @Summary      Fetch a conversation
// @Description  Returns all messages with the given user, oldest first, and marks their messages as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      200  {array}   delivery.MessagePayload
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /messages/{id} [get]
func (h *Handler) GetConversation(c *gin.Context) {
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	messages, err := h.delivery.Conversation(c.Request.Context(), currentUserID(c), uint(otherID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMessagePayloads(messages))
}

// GetUnreadCount godoc
// @Summary      Count unread messages
// @Description  Returns how many messages addressed to the authenticated user are unread.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64 "{"unread_count": 3}"
// @Failure      401  {object}  ErrorResponse
// @Router       /messages/unread/count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	count, err := h.delivery.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
