package socket

import (
	"encoding/json"
	"log"
	"time"
)

// Event types pushed to connected clients.
const (
	EventNotification  = "notification"
	EventProofStatus   = "proof_status"
	EventPhaseAdvanced = "phase_advanced"
)

// Broadcaster serializes domain events and hands them to the hub.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

type envelope struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

func (b *Broadcaster) push(userID, event string, payload interface{}) {
	if b == nil || b.hub == nil {
		return
	}
	data, err := json.Marshal(envelope{Event: event, Timestamp: time.Now(), Payload: payload})
	if err != nil {
		log.Printf("[WS] Failed to marshal %s event: %v", event, err)
		return
	}
	b.hub.SendToUser(userID, data)
}

// SendNotification pushes a persisted notification to its recipient.
func (b *Broadcaster) SendNotification(userID string, payload interface{}) {
	b.push(userID, EventNotification, payload)
}

// SendProofStatus pushes a proof status change to a user.
func (b *Broadcaster) SendProofStatus(userID string, payload interface{}) {
	b.push(userID, EventProofStatus, payload)
}

// SendPhaseAdvanced pushes a phase advancement to a user.
func (b *Broadcaster) SendPhaseAdvanced(userID string, payload interface{}) {
	b.push(userID, EventPhaseAdvanced, payload)
}
