package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ConnectionRequestInput identifies the user to connect with.
type ConnectionRequestInput struct {
	TargetUserID uint `json:"target_user_id" binding:"required" example:"2"`
}

// RequestConnection godoc
// @Summary      Send a connection request
// @Description  Creates a pending connection request to another user.
// @Tags         connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ConnectionRequestInput true "Target user"
// @Success      201  {object}  map[string]string "{"message": "Connection request sent"}"
// @Failure      400  {object}  ErrorResponse "Self-request or malformed input"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "A connection already exists for this pair"
// @Router       /connections/request [post]
func (h *Handler) RequestConnection(c *gin.Context) {
	var input ConnectionRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edge, err := h.graph.Request(c.Request.Context(), currentUserID(c), input.TargetUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if edge.DecidedAt != nil {
		// Mutual requests merged under AUTO_ACCEPT_MUTUAL.
		c.JSON(http.StatusCreated, gin.H{"message": "Connection accepted"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Connection request sent"})
}

// AcceptConnection godoc
// @Summary      Accept a connection request
// @Description  Accepts the pending request sent by the user in the path.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Connection accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No pending request from that user"
// @Router       /connections/accept/{id} [post]
func (h *Handler) AcceptConnection(c *gin.Context) {
	requesterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting user ID"})
		return
	}

	if _, err := h.graph.Accept(c.Request.Context(), currentUserID(c), uint(requesterID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Connection accepted"})
}

// RejectConnection godoc
// @Summary      Reject a connection request
// @Description  Rejects the pending request sent by the user in the path. The pair may be re-requested later.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Connection rejected"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No pending request from that user"
// @Router       /connections/reject/{id} [post]
func (h *Handler) RejectConnection(c *gin.Context) {
	requesterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requesting user ID"})
		return
	}

	if err := h.graph.Reject(c.Request.Context(), currentUserID(c), uint(requesterID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Connection rejected"})
}

// RemoveConnection godoc
// @Summary      Remove a connection
// @Description  Cancels an outgoing pending request, or removes an accepted connection.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Other User ID"
// @Success      200  {object}  map[string]string "{"message": "Connection removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Only the requester may cancel a pending request"
// @Failure      404  {object}  ErrorResponse "No connection with that user"
// @Router       /connections/{id} [delete]
func (h *Handler) RemoveConnection(c *gin.Context) {
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.graph.Remove(c.Request.Context(), currentUserID(c), uint(otherID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Connection removed"})
}

// GetConnections godoc
// @Summary      List connections
// @Description  Lists the users connected to the authenticated user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /connections [get]
func (h *Handler) GetConnections(c *gin.Context) {
	users, err := h.graph.Connections(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}

// GetPendingConnections godoc
// @Summary      List incoming connection requests
// @Description  Lists the users with a pending request targeting the authenticated user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   UserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /connections/pending [get]
func (h *Handler) GetPendingConnections(c *gin.Context) {
	users, err := h.graph.PendingIncoming(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponses(users))
}
