package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message.
type MessageType string

const (
	// MsgScoreChanged tells a client its round state moved. It carries no
	// payload on purpose: the client re-reads the score over REST, so it
	// can never act on a stale event body.
	MsgScoreChanged MessageType = "score_changed"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans score notifications out to the WebSocket connections of each
// session. A session may hold several connections (tabs); all of them get
// every event.
type Hub struct {
	sessionConns map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one WebSocket connection.
type Connection struct {
	SessionID string
	Send      chan []byte
}

// BroadcastMessage is a message to deliver to one session's connections.
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a hub and starts its dispatch loop.
func NewHub() *Hub {
	h := &Hub{
		sessionConns: make(map[string]map[*Connection]bool),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		broadcast:    make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.sessionConns[conn.SessionID] == nil {
				h.sessionConns[conn.SessionID] = make(map[*Connection]bool)
			}
			h.sessionConns[conn.SessionID][conn] = true
			h.mu.Unlock()
			log.Printf("score feed connected for session %s", conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.sessionConns[conn.SessionID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.sessionConns, conn.SessionID)
					}
					log.Printf("score feed disconnected for session %s", conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.sessionConns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// NotifyScoreChanged pushes a payload-free score event to the session.
// Shaped to plug straight into a ScoreNotifier subscription.
func (h *Hub) NotifyScoreChanged(sessionID string) {
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message:   &Message{Type: MsgScoreChanged},
	}
}
