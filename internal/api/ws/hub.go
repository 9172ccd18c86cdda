// Package ws fans deadline reminders out to connected websocket clients.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send(payload []byte) bool
	Close()
}

// Hub keeps the set of subscribers and implements ports.ReminderNotifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[Subscriber]struct{}
	log     zerolog.Logger
}

// reminderEvent is the JSON frame pushed to subscribers.
type reminderEvent struct {
	Type          string `json:"type"`
	ProjectID     int64  `json:"project_id"`
	ProjectName   string `json:"project_name"`
	DaysRemaining int    `json:"days_remaining"`
	Message       string `json:"message"`
	RaisedAt      string `json:"raised_at"`
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[Subscriber]struct{}),
		log:     log.With().Str("component", "reminder_hub").Logger(),
	}
}

func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[s] = struct{}{}
}

func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, s)
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnReminder logs the reminder and pushes it to every subscriber. Clients that
// cannot take the frame are disconnected.
func (h *Hub) OnReminder(r domain.Reminder) {
	h.log.Info().
		Int64("project_id", r.ProjectID).
		Int("days_remaining", r.DaysRemaining).
		Msg(r.Message())

	payload, err := json.Marshal(reminderEvent{
		Type:          "deadline_reminder",
		ProjectID:     r.ProjectID,
		ProjectName:   r.ProjectName,
		DaysRemaining: r.DaysRemaining,
		Message:       r.Message(),
		RaisedAt:      r.RaisedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("encode reminder")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.Send(payload) {
			h.log.Warn().Msg("dropping slow reminder subscriber")
			c.Close()
			delete(h.clients, c)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
