package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Event types pushed to connected clients so open views can refresh
// without polling.
const (
	EventLowStock     = "low_stock"      // a product fell to or below its threshold
	EventRestocked    = "restocked"      // a product rose back above its threshold
	EventCheckedIn    = "checked_in"     // a single item was checked in
	EventCheckedInAll = "checked_in_all" // the whole list was checked in
)

// Event is the push payload for an inventory change. It is delivered
// only to connections authenticated as Event.UserID; one user's stock
// levels are never visible on another user's socket.
type Event struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// Conn is the write surface the hub needs from a websocket
// connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session ties one connection to the user it authenticated as during
// the upgrade.
type Session struct {
	UserID string
	Conn   Conn
}

// Hub fans inventory events out to the owning user's connections.
type Hub struct {
	Register   chan *Session
	Unregister chan *Session
	Events     chan Event

	sessions map[string]map[*Session]bool // userID -> sessions
	mu       sync.Mutex
	log      *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Session),
		Unregister: make(chan *Session),
		Events:     make(chan Event),
		sessions:   make(map[string]map[*Session]bool),
		log:        log,
	}
}

// Publish queues an event without blocking the caller's transaction
// path.
func (h *Hub) Publish(ev Event) {
	go func() { h.Events <- ev }()
}

func (h *Hub) Run() {
	for {
		select {
		case sess := <-h.Register:
			h.mu.Lock()
			if h.sessions[sess.UserID] == nil {
				h.sessions[sess.UserID] = make(map[*Session]bool)
			}
			h.sessions[sess.UserID][sess] = true
			h.mu.Unlock()
			h.log.Debug("ws client connected", zap.String("user_id", sess.UserID))

		case sess := <-h.Unregister:
			h.mu.Lock()
			if set, ok := h.sessions[sess.UserID]; ok && set[sess] {
				delete(set, sess)
				if len(set) == 0 {
					delete(h.sessions, sess.UserID)
				}
				sess.Conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.Events:
			msg, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("marshal ws event", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for sess := range h.sessions[ev.UserID] {
				if err := sess.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					sess.Conn.Close()
					delete(h.sessions[ev.UserID], sess)
				}
			}
			h.mu.Unlock()
		}
	}
}
