// Package celebrate turns task completions into celebration events for the UI.
package celebrate

import (
	"strconv"
	"sync"
	"time"

	"taskboard/internal/events"
	"taskboard/internal/metrics"
)

// ComboWindow is how long a streak of completions stays alive.
const ComboWindow = 5 * time.Second

const (
	EventFull = "celebration"
	EventMini = "celebration.mini"
)

// Payload is sent with every celebration event.
type Payload struct {
	Combo int    `json:"combo"`
	Text  string `json:"text"`
}

var streakTexts = []string{"WOOOOO!", "UNSTOPPABLE!", "LEGENDARY!", "MONSTER KILL!", "PURE ENERGY!", "YEAH BABY!"}

// Hub publishes celebrations to an event bus and tracks completion streaks.
type Hub struct {
	mu    sync.Mutex
	bus   *events.Bus
	now   func() time.Time
	combo int
	last  time.Time
}

// NewHub returns a hub publishing on bus. bus may be nil.
func NewHub(bus *events.Bus) *Hub {
	return &Hub{bus: bus, now: time.Now}
}

// WithClock replaces the hub's time source.
func (h *Hub) WithClock(now func() time.Time) *Hub {
	h.now = now
	return h
}

// Celebrate fires the full celebration and extends the streak.
func (h *Hub) Celebrate() {
	h.mu.Lock()
	now := h.now()
	if h.last.IsZero() || now.Sub(h.last) > ComboWindow {
		h.combo = 0
	}
	h.combo++
	h.last = now
	combo := h.combo
	h.mu.Unlock()

	metrics.Celebrations.WithLabelValues("full").Inc()
	h.bus.Publish(events.Event{Type: EventFull, At: now, Payload: Payload{Combo: combo, Text: streakText(combo)}})
}

// Mini fires the small celebration used for subtasks. It does not touch the streak.
func (h *Hub) Mini() {
	metrics.Celebrations.WithLabelValues("mini").Inc()
	h.bus.Publish(events.Event{Type: EventMini, At: h.now(), Payload: Payload{Text: "Nice!"}})
}

// Combo returns the current streak length, zero once the window has lapsed.
func (h *Hub) Combo() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last.IsZero() || h.now().Sub(h.last) > ComboWindow {
		return 0
	}
	return h.combo
}

func streakText(combo int) string {
	switch {
	case combo > 4:
		return streakTexts[combo%len(streakTexts)]
	case combo > 1:
		return "COMBO x" + strconv.Itoa(combo) + "!"
	default:
		return streakTexts[0]
	}
}
