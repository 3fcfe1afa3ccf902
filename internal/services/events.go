package services

import (
	"sync"
)

// Event types pushed over SSE
const (
	EventFeedbackCreated = "feedback.created"
	EventFeedbackUpdated = "feedback.updated"
	EventTaskReminder    = "task.reminder"
)

// Event is a real-time update pushed to connected review pages. ProjectID
// scopes feedback events; UserID scopes reminder events (0 means unscoped).
type Event struct {
	Type      string      `json:"type"`
	ProjectID uint        `json:"project_id,omitempty"`
	GrainID   uint        `json:"grain_id,omitempty"`
	UserID    uint        `json:"user_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventHub manages SSE client connections and event broadcasting. It is the
// typed replacement for broadcasting page events through the document.
type EventHub struct {
	clients map[string]chan Event
	mu      sync.RWMutex
}

// NewEventHub creates a new hub instance
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan Event),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *EventHub) Subscribe(clientID string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Buffered channel to prevent blocking publishers
	ch := make(chan Event, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *EventHub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global hub instance
var globalEventHub *EventHub
var eventHubOnce sync.Once

// GetEventHub returns the global event hub singleton
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}

// PublishFeedbackEvent notifies subscribers of a created or updated feedback.
func PublishFeedbackEvent(eventType string, projectID, grainID uint, payload interface{}) {
	GetEventHub().Publish(Event{
		Type:      eventType,
		ProjectID: projectID,
		GrainID:   grainID,
		Payload:   payload,
	})
}

// PublishReminderEvent notifies a task owner that a reminder fired.
func PublishReminderEvent(userID uint, payload interface{}) {
	GetEventHub().Publish(Event{
		Type:    EventTaskReminder,
		UserID:  userID,
		Payload: payload,
	})
}
