// Package delivery persists direct messages and routes them to live
// recipients. Persistence is the durability boundary: a message is accepted
// once it is stored, and the live push on top of that is best-effort.
package delivery

import (
	"context"
	"log"
	"strings"

	"proconnect/backend/internal/apperr"
	"proconnect/backend/internal/graph"
	"proconnect/backend/internal/models"
	"proconnect/backend/internal/presence"

	"gorm.io/gorm"
)

// Router sends and fetches direct messages. Messaging is connection-gated:
// only users joined by an accepted edge may exchange messages.
type Router struct {
	db       *gorm.DB
	graph    *graph.Service
	registry *presence.Registry
}

// NewRouter creates a delivery router.
func NewRouter(db *gorm.DB, g *graph.Service, r *presence.Registry) *Router {
	return &Router{db: db, graph: g, registry: r}
}

// MessagePayload is the wire shape of a message, both in HTTP responses and
// in push events.
type MessagePayload struct {
	ID         uint   `json:"id"`
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
	Read       bool   `json:"read"`
}

// NewMessagePayload converts a persisted message to its wire shape.
func NewMessagePayload(m models.Message) MessagePayload {
	return MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Read:       m.Read,
	}
}

// Send persists a message from sender to receiver and pushes it to the
// receiver's live channel if one is registered. The authorization check runs
// before anything is written; the push runs after and its outcome never
// affects the result.
func (r *Router) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, apperr.InvalidArgument("cannot message yourself")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidArgument("message content must not be empty")
	}

	connected, err := r.graph.AreConnected(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperr.NotAuthorized("users %d and %d are not connected", senderID, receiverID)
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	// Best-effort live push; the message is already durable.
	event := presence.Event{Type: presence.EventTypeNewMessage, Message: NewMessagePayload(msg)}
	if !r.registry.Push(receiverID, event) {
		log.Printf("no live channel for user %d, message %d delivered on next fetch", receiverID, msg.ID)
	}

	return &msg, nil
}

// Conversation returns every message between the two users, both directions,
// ordered by creation time ascending, and marks the other user's messages as
// read. A client uses this to backfill before its live channel takes over;
// message IDs make the merge idempotent.
func (r *Router) Conversation(ctx context.Context, userID, otherID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", otherID, userID, false).
		Update("read", true).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// UnreadCount returns how many messages addressed to the user are unread.
func (r *Router) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
