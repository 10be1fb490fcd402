// Package events fans prompt and acknowledgment events out to subscribers.
// The hub is the delivery side of the prompt/response channel: the host
// renders the prompt however it likes and feeds answers back through the API.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/confirm"
	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Event types.
const (
	TypePrompt      = "prompt"
	TypeAcknowledge = "acknowledge"
)

// Event is one outbound notification.
type Event struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	App   string    `json:"app"`
	Stage string    `json:"stage,omitempty"`
	Time  time.Time `json:"time"`
}

// Hub broadcasts events to all current subscribers. Slow subscribers drop
// events rather than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *logging.Logger
}

// NewHub creates an event hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a subscriber. The returned cancel func must be called
// to release it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Prompt implements confirm.Prompter.
func (h *Hub) Prompt(app types.AppIdentity, stage confirm.Stage) {
	h.publish(Event{
		ID:    uuid.New().String(),
		Type:  TypePrompt,
		App:   app.Name,
		Stage: string(stage),
		Time:  time.Now(),
	})
}

// Acknowledge implements confirm.Notifier.
func (h *Hub) Acknowledge(app types.AppIdentity) {
	h.publish(Event{
		ID:   uuid.New().String(),
		Type: TypeAcknowledge,
		App:  app.Name,
		Time: time.Now(),
	})
}

func (h *Hub) publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.logger.Warn("subscriber backlogged, dropping event",
				zap.String("type", e.Type),
				zap.String("app", e.App))
		}
	}
}
