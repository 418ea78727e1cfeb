// Package songletter runs the song-letter word chain against simulated bots.
package songletter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
	"github.com/mcdev12/nota/go/internal/timer"
)

type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhasePlaying     Phase = "playing"
	PhaseBotThinking Phase = "bot-thinking"
	PhaseGameOver    Phase = "gameover"
)

const (
	UserDisplayName = "أنت"

	msgTimeUp  = "انتهى الوقت!"
	msgUserWon = "لقد فزت! لم يستطع البوت إيجاد أغنية."

	WinnerUser = "user"
	WinnerBots = "bots"

	TurnUser = "user"
	TurnBot  = "bot"
)

type Config struct {
	TurnDuration  time.Duration
	BotDelay      time.Duration
	ConcedeDelay  time.Duration
	PointsPerSong int
}

func DefaultConfig() Config {
	return Config{
		TurnDuration:  20 * time.Second,
		BotDelay:      1500 * time.Millisecond,
		ConcedeDelay:  time.Second,
		PointsPerSong: 100,
	}
}

// Loader fetches the songs the bots know. An empty result means the fetch failed.
type Loader func(ctx context.Context) []models.BotSong

// Strategy plays the bots' turns and picks starting letters.
type Strategy interface {
	BotStrategy
	RandomLetter() string
}

type Snapshot struct {
	SessionID string               `json:"session_id"`
	Game      models.GameID        `json:"game"`
	Phase     Phase                `json:"phase"`
	Letter    string               `json:"letter"`
	Score     int                  `json:"score"`
	Remaining int                  `json:"remaining"`
	TimeoutAt time.Time            `json:"timeout_at"`
	Messages  []models.ChatMessage `json:"messages"`
	Winner    string               `json:"winner,omitempty"`
}

type Session struct {
	cfg       Config
	load      Loader
	strategy  Strategy
	clock     clockwork.Clock
	emit      *events.Emitter
	countdown *timer.Countdown

	mu       sync.Mutex
	epoch    uint64
	turn     uint64 // bumped whenever the countdown is re-armed or a bot move is scheduled
	closed   bool
	phase    Phase
	songs    []models.BotSong
	letter   string
	messages []models.ChatMessage
	nextID   int64
	score    int
	winner   string
	pending  clockwork.Timer
}

func New(cfg Config, load Loader, strategy Strategy, clock clockwork.Clock, emit *events.Emitter) *Session {
	return &Session{
		cfg:       cfg,
		load:      load,
		strategy:  strategy,
		clock:     clock,
		emit:      emit,
		countdown: timer.NewCountdown(clock),
		phase:     PhaseLoading,
	}
}

func (s *Session) Game() models.GameID { return models.GameSongLetter }

// Start fetches the bot song list and opens the game on a random letter.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.stopTimersLocked()
	s.phase = PhaseLoading
	s.songs = nil
	s.letter = ""
	s.messages = nil
	s.score = 0
	s.winner = ""
	s.emit.Emit(events.EventTypeSessionLoading, events.SessionLoadingPayload{Game: models.GameSongLetter})
	s.mu.Unlock()

	songs := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		return
	}
	if len(songs) == 0 {
		log.Warn().Str("session_id", s.emit.SessionID()).Msg("no bot songs loaded, session stays in loading")
		s.emit.Emit(events.EventTypeSessionLoadEmpty, events.SessionLoadingPayload{Game: models.GameSongLetter})
		return
	}

	s.songs = songs
	s.letter = s.strategy.RandomLetter()
	s.phase = PhasePlaying
	s.armTurnLocked()
	s.appendLocked(models.ChatMessage{Author: models.AuthorSystem, Text: fmt.Sprintf(`اللعبة تبدأ بحرف "%s"`, s.letter)})
	s.letterChangedLocked(TurnUser)
}

// Restart discards the chat and score and starts over.
func (s *Session) Restart(ctx context.Context) {
	s.Start(ctx)
}

// Submit offers a song title for the current letter. Text that does not start with
// the letter, or does not end in an Arabic letter, is ignored and reported as not
// accepted. So is anything sent while a bot is thinking.
func (s *Session) Submit(text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, session.ErrClosed
	}
	switch s.phase {
	case PhasePlaying:
	case PhaseBotThinking:
		return false, nil
	default:
		return false, session.ErrNotPlaying
	}

	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, s.letter) {
		return false, nil
	}
	last, ok := lastArabicLetter(text)
	if !ok {
		return false, nil
	}

	s.score += s.cfg.PointsPerSong
	s.appendLocked(models.ChatMessage{Author: models.AuthorUser, Text: text, AuthorName: UserDisplayName})
	s.letter = last
	s.phase = PhaseBotThinking
	s.armTurnLocked()
	s.letterChangedLocked(TurnBot)

	epoch, turn := s.epoch, s.turn
	s.pending = s.clock.AfterFunc(s.cfg.BotDelay, func() { s.botTurn(epoch, turn) })
	return true, nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.emit.SessionID(),
		Game:      models.GameSongLetter,
		Phase:     s.phase,
		Letter:    s.letter,
		Score:     s.score,
		Remaining: s.countdown.Remaining(),
		TimeoutAt: s.countdown.Deadline().UTC(),
		Messages:  append([]models.ChatMessage(nil), s.messages...),
		Winner:    s.winner,
	}
	if s.phase == PhaseLoading {
		snap.Remaining = int(s.cfg.TurnDuration / time.Second)
	}
	return snap
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.stopTimersLocked()
}

func (s *Session) botTurn(epoch, turn uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, turn) || s.phase != PhaseBotThinking {
		return
	}

	move := s.strategy.Reply(s.letter, s.songs)
	s.appendLocked(models.ChatMessage{Author: move.Bot.ID, Text: move.Text, AuthorName: move.Bot.Name})

	last, ok := lastArabicLetter(strings.TrimSpace(move.Title))
	if !ok {
		log.Info().
			Str("session_id", s.emit.SessionID()).
			Str("letter", s.letter).
			Msg("bot conceded")
		s.countdown.Cancel()
		s.turn++
		turn := s.turn
		s.pending = s.clock.AfterFunc(s.cfg.ConcedeDelay, func() { s.concede(epoch, turn) })
		return
	}

	s.letter = last
	s.phase = PhasePlaying
	s.armTurnLocked()
	s.appendLocked(models.ChatMessage{Author: models.AuthorSystem, Text: fmt.Sprintf(`الآن حرف "%s"`, last)})
	s.letterChangedLocked(TurnUser)
}

func (s *Session) concede(epoch, turn uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, turn) || s.phase != PhaseBotThinking {
		return
	}
	s.endLocked(WinnerUser, "bot_conceded", msgUserWon)
}

func (s *Session) onTick(epoch, turn uint64, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, turn) {
		return
	}
	s.emit.Emit(events.EventTypeTimerTick, events.TimerTickPayload{Remaining: remaining})
}

func (s *Session) onExpire(epoch, turn uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, turn) {
		return
	}
	if s.phase != PhasePlaying && s.phase != PhaseBotThinking {
		return
	}
	s.endLocked(WinnerBots, "timeout", msgTimeUp)
}

func (s *Session) stale(epoch, turn uint64) bool {
	return s.closed || epoch != s.epoch || turn != s.turn
}

// armTurnLocked restarts the turn countdown under a fresh turn token.
func (s *Session) armTurnLocked() {
	s.turn++
	epoch, turn := s.epoch, s.turn
	s.countdown.Start(s.cfg.TurnDuration,
		func(remaining int) { s.onTick(epoch, turn, remaining) },
		func() { s.onExpire(epoch, turn) },
	)
}

func (s *Session) endLocked(winner, reason, text string) {
	s.stopTimersLocked()
	s.phase = PhaseGameOver
	s.winner = winner
	s.appendLocked(models.ChatMessage{Author: models.AuthorSystem, Text: text})

	log.Info().
		Str("session_id", s.emit.SessionID()).
		Str("winner", winner).
		Int("score", s.score).
		Msg("song-letter game over")

	s.emit.Emit(events.EventTypeSessionFinished, events.SessionFinishedPayload{
		Game:   models.GameSongLetter,
		Score:  s.score,
		Reason: reason,
		Winner: winner,
	})
}

func (s *Session) stopTimersLocked() {
	s.countdown.Cancel()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Session) appendLocked(msg models.ChatMessage) {
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	s.emit.Emit(events.EventTypeChatMessage, events.ChatMessagePayload{Message: msg, Score: s.score})
}

func (s *Session) letterChangedLocked(turn string) {
	s.emit.Emit(events.EventTypeLetterChanged, events.LetterChangedPayload{
		Letter:    s.letter,
		Turn:      turn,
		TimeoutAt: s.countdown.Deadline().UTC(),
	})
}

// lastArabicLetter returns the final character of text if it is in the Arabic block.
func lastArabicLetter(text string) (string, bool) {
	r, size := utf8.DecodeLastRuneInString(text)
	if size == 0 || r < 0x0600 || r > 0x06FF {
		return "", false
	}
	return string(r), true
}
