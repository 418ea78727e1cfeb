// Package quiz runs the multiple-choice games: guess-song and musical-pictures.
//
// A session moves loading → playing → answered → (playing | finished). Each round
// has one countdown; the first of an answer or the countdown reaching zero closes
// the round. Every deferred callback carries the epoch and round it was armed for,
// so callbacks from a previous round or a restarted session do nothing.
package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
	"github.com/mcdev12/nota/go/internal/timer"
)

const (
	pointsBase      = 100
	pointsPerSecond = 5
)

// Config holds the per-game constants.
type Config struct {
	Game          models.GameID
	RoundDuration time.Duration
	ClipDuration  time.Duration // zero for games without audio
}

func GuessSongConfig() Config {
	return Config{
		Game:          models.GameGuessSong,
		RoundDuration: 15 * time.Second,
		ClipDuration:  8 * time.Second,
	}
}

func PicturesConfig() Config {
	return Config{
		Game:          models.GameMusicalPictures,
		RoundDuration: 20 * time.Second,
	}
}

// Loader fetches a batch of questions. An empty result means the fetch failed.
type Loader func(ctx context.Context) []models.Question

// ClipPlayer plays a segment of a question's clip on the player's device.
type ClipPlayer interface {
	Play(clipRef string, offset, duration time.Duration)
	Stop()
}

// Result is the outcome of a closed round.
type Result struct {
	Round         int    `json:"round"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timed_out"`
	Points        int    `json:"points"`
	Score         int    `json:"score"`
}

// Snapshot is the full client-visible state of a session.
type Snapshot struct {
	SessionID   string               `json:"session_id"`
	Game        models.GameID        `json:"game"`
	Phase       models.Phase         `json:"phase"`
	Round       int                  `json:"round"`
	TotalRounds int                  `json:"total_rounds"`
	Score       int                  `json:"score"`
	Remaining   int                  `json:"remaining"`
	TimeoutAt   time.Time            `json:"timeout_at"`
	Question    *models.QuestionView `json:"question,omitempty"`
	Last        *Result              `json:"last,omitempty"`
	ClipReady   bool                 `json:"clip_ready"`
	ClipPlayed  bool                 `json:"clip_played"`
}

type Session struct {
	cfg       Config
	load      Loader
	clip      ClipPlayer
	clock     clockwork.Clock
	emit      *events.Emitter
	countdown *timer.Countdown

	mu         sync.Mutex
	epoch      uint64
	closed     bool
	phase      models.Phase
	questions  []models.Question
	index      int
	score      int
	last       *Result
	clipReady  bool
	clipPlayed bool
}

// New creates a session in loading. clip may be nil for games without audio.
func New(cfg Config, load Loader, clip ClipPlayer, clock clockwork.Clock, emit *events.Emitter) *Session {
	return &Session{
		cfg:       cfg,
		load:      load,
		clip:      clip,
		clock:     clock,
		emit:      emit,
		countdown: timer.NewCountdown(clock),
		phase:     models.PhaseLoading,
	}
}

func (s *Session) Game() models.GameID { return s.cfg.Game }

// Start fetches questions and opens the first round. A fetch that returns nothing
// leaves the session in loading. If the session is restarted or closed while the
// fetch is in flight, its result is discarded.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.countdown.Cancel()
	s.stopClipLocked()
	s.phase = models.PhaseLoading
	s.questions = nil
	s.index = 0
	s.score = 0
	s.last = nil
	s.clipReady = false
	s.clipPlayed = false
	s.emit.Emit(events.EventTypeSessionLoading, events.SessionLoadingPayload{Game: s.cfg.Game})
	s.mu.Unlock()

	questions := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || epoch != s.epoch {
		log.Debug().Str("session_id", s.emit.SessionID()).Msg("discarding stale question fetch")
		return
	}
	if len(questions) == 0 {
		log.Warn().
			Str("session_id", s.emit.SessionID()).
			Str("game", string(s.cfg.Game)).
			Msg("no questions loaded, session stays in loading")
		s.emit.Emit(events.EventTypeSessionLoadEmpty, events.SessionLoadingPayload{Game: s.cfg.Game})
		return
	}

	s.questions = questions
	s.beginRoundLocked(0)
}

// Restart discards all progress and loads a fresh batch.
func (s *Session) Restart(ctx context.Context) {
	s.Start(ctx)
}

// Answer closes the open round with option. An answer arriving after the countdown
// hit zero counts as a timeout.
func (s *Session) Answer(option string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, session.ErrClosed
	}
	if s.phase != models.PhasePlaying {
		return Result{}, session.ErrNotPlaying
	}
	if !hasOption(s.questions[s.index], option) {
		return Result{}, session.ErrUnknownOption
	}

	remaining := s.countdown.Remaining()
	if remaining == 0 {
		return s.closeRoundLocked("", true, 0), nil
	}
	return s.closeRoundLocked(option, false, remaining), nil
}

// Next advances from answered to the next round, or to finished after the last one.
func (s *Session) Next() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Snapshot{}, session.ErrClosed
	}
	if s.phase != models.PhaseAnswered {
		return Snapshot{}, session.ErrNotAnswered
	}

	if s.index+1 < len(s.questions) {
		s.beginRoundLocked(s.index + 1)
	} else {
		s.phase = models.PhaseFinished
		log.Info().
			Str("session_id", s.emit.SessionID()).
			Str("game", string(s.cfg.Game)).
			Int("score", s.score).
			Msg("quiz finished")
		s.emit.Emit(events.EventTypeSessionFinished, events.SessionFinishedPayload{
			Game:        s.cfg.Game,
			Score:       s.score,
			TotalRounds: len(s.questions),
		})
	}
	return s.snapshotLocked(), nil
}

// ClipReady records that the player's device has buffered the current clip.
func (s *Session) ClipReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clipCheckLocked(); err != nil {
		return err
	}
	s.clipReady = true
	return nil
}

// PlayClip plays the current clip once per round, from the question's start offset.
func (s *Session) PlayClip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clipCheckLocked(); err != nil {
		return err
	}
	if !s.clipReady {
		return session.ErrClipNotReady
	}
	if s.clipPlayed {
		return session.ErrClipPlayed
	}

	q := s.questions[s.index]
	s.clipPlayed = true
	s.clip.Play(q.ClipRef, time.Duration(q.StartTime)*time.Second, s.cfg.ClipDuration)
	return nil
}

// Snapshot returns the current state with the server-computed remaining time.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Score returns the running score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Close tears the session down. Pending callbacks and in-flight fetches become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.countdown.Cancel()
	s.stopClipLocked()
}

func (s *Session) beginRoundLocked(index int) {
	s.index = index
	s.phase = models.PhasePlaying
	s.clipReady = false
	s.clipPlayed = false

	epoch := s.epoch
	s.countdown.Start(s.cfg.RoundDuration,
		func(remaining int) { s.onTick(epoch, index, remaining) },
		func() { s.onExpire(epoch, index) },
	)

	log.Debug().
		Str("session_id", s.emit.SessionID()).
		Int("round", index+1).
		Msg("round started")

	s.emit.Emit(events.EventTypeRoundStarted, events.RoundStartedPayload{
		Round:           index + 1,
		TotalRounds:     len(s.questions),
		Question:        s.questions[index].View(),
		Score:           s.score,
		StartedAt:       s.clock.Now().UTC(),
		TimeoutAt:       s.countdown.Deadline().UTC(),
		TimePerRoundSec: int(s.cfg.RoundDuration / time.Second),
	})
}

func (s *Session) onTick(epoch uint64, index, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, index) {
		return
	}
	s.emit.Emit(events.EventTypeTimerTick, events.TimerTickPayload{Round: index + 1, Remaining: remaining})
}

func (s *Session) onExpire(epoch uint64, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(epoch, index) {
		return
	}
	log.Debug().
		Str("session_id", s.emit.SessionID()).
		Int("round", index+1).
		Msg("round timed out")
	s.closeRoundLocked("", true, 0)
}

func (s *Session) stale(epoch uint64, index int) bool {
	return s.closed || epoch != s.epoch || index != s.index || s.phase != models.PhasePlaying
}

func (s *Session) closeRoundLocked(selected string, timedOut bool, remaining int) Result {
	s.countdown.Cancel()
	s.stopClipLocked()

	q := s.questions[s.index]
	correct := !timedOut && selected == q.CorrectAnswer
	points := 0
	if correct {
		points = pointsBase + remaining*pointsPerSecond
	}
	s.score += points
	s.phase = models.PhaseAnswered

	result := Result{
		Round:         s.index + 1,
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       correct,
		TimedOut:      timedOut,
		Points:        points,
		Score:         s.score,
	}
	s.last = &result

	s.emit.Emit(events.EventTypeAnswerRevealed, events.AnswerRevealedPayload{
		Round:         result.Round,
		Selected:      result.Selected,
		CorrectAnswer: result.CorrectAnswer,
		Correct:       result.Correct,
		TimedOut:      result.TimedOut,
		Points:        result.Points,
		Score:         result.Score,
	})
	return result
}

func (s *Session) clipCheckLocked() error {
	if s.closed {
		return session.ErrClosed
	}
	if s.cfg.ClipDuration == 0 || s.clip == nil {
		return session.ErrNoClip
	}
	if s.phase != models.PhasePlaying {
		return session.ErrNotPlaying
	}
	return nil
}

func (s *Session) stopClipLocked() {
	if s.clip != nil && s.clipPlayed {
		s.clip.Stop()
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:   s.emit.SessionID(),
		Game:        s.cfg.Game,
		Phase:       s.phase,
		TotalRounds: len(s.questions),
		Score:       s.score,
		Remaining:   s.countdown.Remaining(),
		ClipReady:   s.clipReady,
		ClipPlayed:  s.clipPlayed,
	}
	if s.phase == models.PhaseLoading {
		snap.Remaining = int(s.cfg.RoundDuration / time.Second)
		return snap
	}
	snap.Round = s.index + 1
	if s.phase == models.PhasePlaying {
		snap.TimeoutAt = s.countdown.Deadline().UTC()
	}
	view := s.questions[s.index].View()
	snap.Question = &view
	if s.phase != models.PhasePlaying && s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	return snap
}

func hasOption(q models.Question, option string) bool {
	if option == "" {
		return false
	}
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
