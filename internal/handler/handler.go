package handler

import (
	"errors"
	"net/http"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/delivery"
	"proconnect/backend/internal/engagement"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/presence"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler exposes the core services over HTTP. Every method reads the acting
// user from the gin context, where the auth middleware placed it; no handler
// consults ambient state beyond that.
type Handler struct {
	db         *gorm.DB
	graph      *graph.Service
	delivery   *delivery.Router
	engagement *engagement.Service
	registry   *presence.Registry
}

// New wires a Handler over the core services.
func New(db *gorm.DB, g *graph.Service, d *delivery.Router, e *engagement.Service, r *presence.Registry) *Handler {
	return &Handler{db: db, graph: g, delivery: d, engagement: e, registry: r}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// currentUserID returns the authenticated user placed on the context by the
// auth middleware.
func currentUserID(c *gin.Context) uint {
	userID, _ := c.Get("userID")
	return userID.(uint)
}

// respondError maps a service error kind to its HTTP status.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
