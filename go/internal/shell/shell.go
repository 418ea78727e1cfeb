// Package shell is the per-player home screen: it lists the enabled games and
// holds at most one active game session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/session/songletter"
)

var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrNoActiveSession = errors.New("no active game session")
	ErrWrongGame       = errors.New("active session is a different game")
)

// Session is a running game. The concrete kinds are *quiz.Session,
// *songletter.Session and *karaoke.Lobby.
type Session interface {
	Game() models.GameID
	Start(ctx context.Context)
	Restart(ctx context.Context)
	Close()
}

// Factory builds a fresh session bound to emit.
type Factory func(emit *events.Emitter) Session

// State is what a reconnecting client needs to redraw the screen. At most one
// of the session snapshots is set.
type State struct {
	PlayerID   string                 `json:"player_id"`
	Games      []games.Game           `json:"games"`
	Active     models.GameID          `json:"active,omitempty"`
	Quiz       *quiz.Snapshot         `json:"quiz,omitempty"`
	SongLetter *songletter.Snapshot   `json:"song_letter,omitempty"`
	Karaoke    *karaoke.LobbySnapshot `json:"karaoke,omitempty"`
}

// Controller is one player's shell.
type Controller struct {
	playerID  string
	catalog   *games.Catalog
	factories map[models.GameID]Factory
	clock     clockwork.Clock
	publisher events.Publisher

	mu     sync.Mutex
	active Session
	emit   *events.Emitter
}

func NewController(playerID string, catalog *games.Catalog, factories map[models.GameID]Factory, clock clockwork.Clock, publisher events.Publisher) *Controller {
	return &Controller{
		playerID:  playerID,
		catalog:   catalog,
		factories: factories,
		clock:     clock,
		publisher: publisher,
	}
}

func (c *Controller) PlayerID() string { return c.playerID }

// Games lists the cards on the home screen.
func (c *Controller) Games() []games.Game {
	return c.catalog.List()
}

// Select enters a game. Any active session is exited first, so session-local
// state never carries over.
func (c *Controller) Select(ctx context.Context, id models.GameID) (Session, error) {
	if _, ok := c.catalog.Lookup(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	factory, ok := c.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no session factory", ErrUnknownGame, id)
	}

	c.mu.Lock()
	c.exitLocked()
	emit := events.NewEmitter(uuid.NewString(), c.playerID, c.clock, c.publisher)
	sess := factory(emit)
	c.active = sess
	c.emit = emit
	emit.Emit(events.EventTypeGameSelected, events.GameSelectedPayload{Game: id})
	c.mu.Unlock()

	log.Info().
		Str("player_id", c.playerID).
		Str("session_id", emit.SessionID()).
		Str("game", string(id)).
		Msg("game selected")

	sess.Start(ctx)
	return sess, nil
}

// Exit discards the active session and returns home.
func (c *Controller) Exit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return ErrNoActiveSession
	}
	c.exitLocked()
	return nil
}

// Restart restarts the active session in place.
func (c *Controller) Restart(ctx context.Context) error {
	sess, err := c.Active()
	if err != nil {
		return err
	}
	sess.Restart(ctx)
	return nil
}

func (c *Controller) Active() (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, ErrNoActiveSession
	}
	return c.active, nil
}

// Quiz returns the active guess-song or musical-pictures session.
func (c *Controller) Quiz() (*quiz.Session, error) {
	return activeAs[*quiz.Session](c)
}

func (c *Controller) SongLetter() (*songletter.Session, error) {
	return activeAs[*songletter.Session](c)
}

func (c *Controller) Karaoke() (*karaoke.Lobby, error) {
	return activeAs[*karaoke.Lobby](c)
}

// State snapshots the shell and its active session.
func (c *Controller) State() State {
	state := State{PlayerID: c.playerID, Games: c.Games()}

	sess, err := c.Active()
	if err != nil {
		return state
	}
	state.Active = sess.Game()
	switch s := sess.(type) {
	case *quiz.Session:
		snap := s.Snapshot()
		state.Quiz = &snap
	case *songletter.Session:
		snap := s.Snapshot()
		state.SongLetter = &snap
	case *karaoke.Lobby:
		snap := s.Snapshot()
		state.Karaoke = &snap
	}
	return state
}

// Close exits the active session without leaving a trace in the event feed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.Close()
		c.active = nil
		c.emit = nil
	}
}

func (c *Controller) exitLocked() {
	if c.active == nil {
		return
	}
	game := c.active.Game()
	score := scoreOf(c.active)
	c.active.Close()
	c.emit.Emit(events.EventTypeGameExited, events.GameExitedPayload{Game: game, Score: score})

	log.Info().
		Str("player_id", c.playerID).
		Str("session_id", c.emit.SessionID()).
		Str("game", string(game)).
		Int("score", score).
		Msg("game exited")

	c.active = nil
	c.emit = nil
}

func activeAs[T Session](c *Controller) (T, error) {
	var zero T
	sess, err := c.Active()
	if err != nil {
		return zero, err
	}
	typed, ok := sess.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrWrongGame, sess.Game())
	}
	return typed, nil
}

func scoreOf(sess Session) int {
	switch s := sess.(type) {
	case *quiz.Session:
		return s.Score()
	case *songletter.Session:
		return s.Score()
	default:
		return 0
	}
}
