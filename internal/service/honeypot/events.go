package honeypot

import (
	"sync"
	"time"
)

// TurnEvent is broadcast to watch subscribers after each processed
// turn.
type TurnEvent struct {
	SessionID    string    `json:"sessionId"`
	Turn         int       `json:"turn"`
	Incoming     string    `json:"incoming"`
	Reply        string    `json:"reply"`
	ScamDetected bool      `json:"scamDetected"`
	ScamType     string    `json:"scamType"`
	Stage        string    `json:"stage"`
	NewEntities  int       `json:"newEntities"`
	Finalized    bool      `json:"finalized"`
	Timestamp    time.Time `json:"timestamp"`
}

// Hub fans turn events out to websocket watchers. Slow subscribers
// drop events rather than stall the message path.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan TurnEvent]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan TurnEvent]struct{})}
}

// Subscribe registers a watcher for one session id. The returned
// cancel func must be called exactly once.
func (h *Hub) Subscribe(sessionID string) (<-chan TurnEvent, func()) {
	ch := make(chan TurnEvent, 16)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan TurnEvent]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[sessionID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, sessionID)
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its session.
func (h *Hub) Publish(evt TurnEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
