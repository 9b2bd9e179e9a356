package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/xelth-com/brokerledger/internal/logger"
)

const (
	EventTasksReconciled = "tasks.reconciled"
	EventLedgerChanged   = "ledger.changed"
)

// Event is the envelope pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	log *logger.Logger
	mu  sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		log:        log,
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				close(old.send)
			}
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.log.Debug("ws client connected", "client", client.ID)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.ID]; ok && cur == client {
				delete(h.clients, client.ID)
				close(client.send)
				h.log.Debug("ws client disconnected", "client", client.ID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					delete(h.clients, id)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Broadcast queues an event for all clients. It never blocks.
func (h *Hub) Broadcast(eventType string, payload interface{}) bool {
	msg, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now()})
	if err != nil {
		h.log.Error("ws marshal failed", "type", eventType, "error", err)
		return false
	}
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.log.Warn("ws broadcast dropped", "type", eventType)
		return false
	}
}

// SendToClient sends a message to a specific client
func (h *Hub) SendToClient(clientID string, message interface{}) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}

	jsonMsg, err := json.Marshal(message)
	if err != nil {
		h.log.Error("ws marshal failed", "error", err)
		return false
	}

	select {
	case client.send <- jsonMsg:
		return true
	default:
		return false
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
