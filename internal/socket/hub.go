package socket

import (
	"log"
	"sync"
)

// Hub keeps the set of connected clients keyed by user and routes outbound
// events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // userID -> connections

	register   chan *Client
	unregister chan *Client
	send       chan *directMessage
}

type directMessage struct {
	userID  string
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan *directMessage, 256),
	}
}

// Run processes registration and delivery events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			log.Printf("[WS] Client connected - UserID: %s", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.outbound)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected - UserID: %s", client.userID)

		case msg := <-h.send:
			h.mu.RLock()
			for client := range h.clients[msg.userID] {
				select {
				case client.outbound <- msg.payload:
				default:
					// Slow consumer; drop the connection rather than block.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToUser queues payload for every connection of userID.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.send <- &directMessage{userID: userID, payload: payload}
}

// GetConnectedClientsCount returns the number of open connections.
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}
