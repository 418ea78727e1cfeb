// Package karaoke runs the karaoke lobby and the sing-along sessions it opens.
package karaoke

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
)

// Loader fetches the karaoke song list. An empty result means the fetch failed.
type Loader func(ctx context.Context) []models.Song

type LobbyPhase string

const (
	LobbyLoading  LobbyPhase = "loading"
	LobbyBrowsing LobbyPhase = "browsing"
	LobbySinging  LobbyPhase = "singing"
)

type LobbySnapshot struct {
	SessionID string        `json:"session_id"`
	Game      models.GameID `json:"game"`
	Phase     LobbyPhase    `json:"phase"`
	Songs     []models.Song `json:"songs"`
	Active    *Snapshot     `json:"active,omitempty"`
}

// Lobby lists the songs and holds at most one active sing-along.
type Lobby struct {
	load  Loader
	ports Ports
	emit  *events.Emitter

	mu     sync.Mutex
	epoch  uint64
	closed bool
	loaded bool
	songs  []models.Song
	active *Session
}

func NewLobby(load Loader, ports Ports, emit *events.Emitter) *Lobby {
	return &Lobby{load: load, ports: ports, emit: emit}
}

func (l *Lobby) Game() models.GameID { return models.GameKaraoke }

// Start fetches the song list. An empty list leaves the lobby loading.
func (l *Lobby) Start(ctx context.Context) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.epoch++
	epoch := l.epoch
	l.closeActiveLocked()
	l.loaded = false
	l.songs = nil
	l.emit.Emit(events.EventTypeSessionLoading, events.SessionLoadingPayload{Game: models.GameKaraoke})
	l.mu.Unlock()

	songs := l.load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || epoch != l.epoch {
		return
	}
	if len(songs) == 0 {
		log.Warn().Str("session_id", l.emit.SessionID()).Msg("no karaoke songs loaded, lobby stays in loading")
		l.emit.Emit(events.EventTypeSessionLoadEmpty, events.SessionLoadingPayload{Game: models.GameKaraoke})
		return
	}
	l.songs = songs
	l.loaded = true
	l.emit.Emit(events.EventTypeSongsLoaded, events.SongsLoadedPayload{Songs: songs})
}

// Restart rewinds the active song, or reloads the list when browsing.
func (l *Lobby) Restart(ctx context.Context) {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()

	if active != nil {
		if err := active.Restart(); err == nil {
			return
		}
	}
	l.Start(ctx)
}

// Songs returns the loaded song list.
func (l *Lobby) Songs() []models.Song {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Song(nil), l.songs...)
}

// Choose opens a sing-along for songID, replacing any active one.
func (l *Lobby) Choose(songID string) (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, session.ErrClosed
	}
	if !l.loaded {
		return nil, session.ErrNotPlaying
	}

	for _, song := range l.songs {
		if song.ID != songID {
			continue
		}
		l.closeActiveLocked()
		l.active = newSession(song, l.ports, l.emit)
		l.emit.Emit(events.EventTypeSongChosen, events.SongChosenPayload{Song: song})
		log.Info().
			Str("session_id", l.emit.SessionID()).
			Str("song_id", song.ID).
			Msg("karaoke song chosen")
		return l.active, nil
	}
	return nil, session.ErrSongNotFound
}

// Leave closes the active sing-along and returns to the song list.
func (l *Lobby) Leave() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active == nil {
		return session.ErrNoSongChosen
	}
	l.closeActiveLocked()
	l.emit.Emit(events.EventTypeSongsLoaded, events.SongsLoadedPayload{Songs: l.songs})
	return nil
}

// Active returns the current sing-along.
func (l *Lobby) Active() (*Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, session.ErrClosed
	}
	if l.active == nil {
		return nil, session.ErrNoSongChosen
	}
	return l.active, nil
}

func (l *Lobby) Snapshot() LobbySnapshot {
	l.mu.Lock()
	active := l.active
	snap := LobbySnapshot{
		SessionID: l.emit.SessionID(),
		Game:      models.GameKaraoke,
		Phase:     LobbyLoading,
		Songs:     append([]models.Song(nil), l.songs...),
	}
	if l.loaded {
		snap.Phase = LobbyBrowsing
	}
	l.mu.Unlock()

	if active != nil {
		s := active.Snapshot()
		snap.Phase = LobbySinging
		snap.Active = &s
	}
	return snap
}

func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.epoch++
	l.closeActiveLocked()
}

func (l *Lobby) closeActiveLocked() {
	if l.active == nil {
		return
	}
	l.active.close()
	l.active = nil
}
