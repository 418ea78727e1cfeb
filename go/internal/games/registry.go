package games

import (
	"fmt"
	"sync"

	"github.com/mcdev12/nota/go/internal/models"
)

// Game is a home-screen card.
type Game struct {
	ID          models.GameID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       string        `json:"color"`
}

var (
	registry   = make(map[models.GameID]Game)
	order      []models.GameID
	registryMu sync.RWMutex
)

// Register adds a game under its ID. Cards are listed in registration order.
func Register(game Game) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if game.ID == "" {
		return fmt.Errorf("game id cannot be empty")
	}
	if _, exists := registry[game.ID]; exists {
		return fmt.Errorf("game already registered for id %q", game.ID)
	}
	registry[game.ID] = game
	order = append(order, game.ID)
	return nil
}

// Get retrieves a game by ID or returns an error if not found.
func Get(id models.GameID) (Game, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	game, exists := registry[id]
	if !exists {
		return Game{}, fmt.Errorf("no game registered for id %q", id)
	}
	return game, nil
}

// All returns every registered game in registration order.
func All() []Game {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Game, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// Catalog is the subset of registered games a deployment offers.
type Catalog struct {
	games []Game
	index map[models.GameID]Game
}

// Enabled builds a Catalog from ids. An empty list enables every registered game.
func Enabled(ids []string) (*Catalog, error) {
	c := &Catalog{index: make(map[models.GameID]Game)}
	if len(ids) == 0 {
		for _, g := range All() {
			c.add(g)
		}
		return c, nil
	}
	for _, id := range ids {
		g, err := Get(models.GameID(id))
		if err != nil {
			return nil, err
		}
		c.add(g)
	}
	return c, nil
}

func (c *Catalog) add(g Game) {
	if _, dup := c.index[g.ID]; dup {
		return
	}
	c.games = append(c.games, g)
	c.index[g.ID] = g
}

// List returns the enabled games in display order.
func (c *Catalog) List() []Game {
	out := make([]Game, len(c.games))
	copy(out, c.games)
	return out
}

// Lookup reports whether id is enabled.
func (c *Catalog) Lookup(id models.GameID) (Game, bool) {
	g, ok := c.index[id]
	return g, ok
}
