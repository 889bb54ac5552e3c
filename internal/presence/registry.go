package presence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a real-time event to be sent to a client. The only event
// type currently emitted is "new_message" carrying the persisted message.
type Event struct {
	Type    string `json:"type"`
	Message any    `json:"message"`
}

// EventTypeNewMessage is pushed when a direct message for the user is persisted.
const EventTypeNewMessage = "new_message"

// Channel carries marshaled events to a single live client. The websocket
// handler drains it; the delivery router writes into it.
type Channel chan []byte

type entry struct {
	ch           Channel
	handle       string
	registeredAt time.Time
}

// Registry tracks which users currently hold a live push channel. Each user
// has at most one channel; registering again replaces the previous channel
// (last registration wins).
type Registry struct {
	mu      sync.RWMutex
	entries map[uint]*entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint]*entry)}
}

// Register creates a live channel for the user, replacing and closing any
// previous one. The returned handle identifies this registration and must be
// presented to Unregister, so a stale disconnect cannot evict a newer channel.
func (r *Registry) Register(userID uint) (Channel, string) {
	ch := make(Channel, 16)
	handle := uuid.NewString()

	r.mu.Lock()
	if prev, ok := r.entries[userID]; ok {
		close(prev.ch)
	}
	r.entries[userID] = &entry{ch: ch, handle: handle, registeredAt: time.Now()}
	r.mu.Unlock()

	return ch, handle
}

// Unregister removes the user's channel only if it still belongs to the given
// registration. A disconnect racing a newer Register is a no-op.
func (r *Registry) Unregister(userID uint, handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[userID]; ok && cur.handle == handle {
		delete(r.entries, userID)
		close(cur.ch)
	}
}

// Lookup returns the user's current channel, if any.
func (r *Registry) Lookup(userID uint) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.ch, true
}

// Push marshals the event and sends it to the user's channel without
// blocking. It reports whether a live channel accepted the event; a missing
// or full channel is not an error, just a miss.
func (r *Registry) Push(userID uint, event Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[userID]
	if !ok {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		return false
	}

	// Non-blocking send so a slow client can never stall the sender.
	select {
	case e.ch <- data:
		return true
	default:
		return false
	}
}
