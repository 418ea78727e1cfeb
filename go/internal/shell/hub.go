package shell

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/models"
)

// DefaultIdleTimeout is how long a shell survives without calls or open connections.
const DefaultIdleTimeout = 30 * time.Minute

// Presence reports whether a player still has a live connection.
type Presence func(playerID string) bool

type HubOption func(*Hub)

// WithIdleTimeout sets how long an unused shell is kept. Zero keeps shells forever.
func WithIdleTimeout(d time.Duration) HubOption {
	return func(h *Hub) { h.idleTimeout = d }
}

// WithPresence keeps shells of connected players regardless of idle time.
func WithPresence(connected Presence) HubOption {
	return func(h *Hub) { h.connected = connected }
}

type hubEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Hub owns one Controller per player.
type Hub struct {
	catalog     *games.Catalog
	factories   map[models.GameID]Factory
	clock       clockwork.Clock
	publisher   events.Publisher
	idleTimeout time.Duration
	connected   Presence

	mu      sync.Mutex
	players map[string]*hubEntry
}

func NewHub(catalog *games.Catalog, factories map[models.GameID]Factory, clock clockwork.Clock, publisher events.Publisher, opts ...HubOption) *Hub {
	h := &Hub{
		catalog:     catalog,
		factories:   factories,
		clock:       clock,
		publisher:   publisher,
		idleTimeout: DefaultIdleTimeout,
		players:     make(map[string]*hubEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Controller returns the player's shell, creating it on first use.
func (h *Hub) Controller(playerID string) *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	if e, ok := h.players[playerID]; ok {
		e.lastSeen = now
		return e.controller
	}
	c := NewController(playerID, h.catalog, h.factories, h.clock, h.publisher)
	h.players[playerID] = &hubEntry{controller: c, lastSeen: now}
	log.Debug().Str("player_id", playerID).Int("players", len(h.players)).Msg("shell created")
	return c
}

// Touch marks the player's shell as used now, if it exists.
func (h *Hub) Touch(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.players[playerID]; ok {
		e.lastSeen = h.clock.Now()
	}
}

// Sweep closes every shell idle for at least the idle timeout whose player
// is not connected. It returns the number of shells removed.
func (h *Hub) Sweep() int {
	if h.idleTimeout <= 0 {
		return 0
	}
	cutoff := h.clock.Now().Add(-h.idleTimeout)

	h.mu.Lock()
	var idle []*Controller
	for id, e := range h.players {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if h.connected != nil && h.connected(id) {
			continue
		}
		idle = append(idle, e.controller)
		delete(h.players, id)
	}
	remaining := len(h.players)
	h.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	if len(idle) > 0 {
		log.Info().Int("removed", len(idle)).Int("players", remaining).Msg("idle shells swept")
	}
	return len(idle)
}

// Run sweeps idle shells every half idle timeout until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.idleTimeout <= 0 {
		return
	}
	ticker := h.clock.NewTicker(h.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			h.Sweep()
		}
	}
}

func (h *Hub) Players() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.players)
}

// Close tears down every shell.
func (h *Hub) Close() {
	h.mu.Lock()
	players := h.players
	h.players = make(map[string]*hubEntry)
	h.mu.Unlock()

	for _, e := range players {
		e.controller.Close()
	}
	log.Info().Int("players", len(players)).Msg("shell hub closed")
}
