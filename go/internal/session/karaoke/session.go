package karaoke

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
)

type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseFinished Phase = "finished"
	PhaseFailed   Phase = "failed"
)

const (
	MsgLoadFailed = "فشل تحميل الأغنية. تأكد من أن الرابط مباشر وصحيح."
	MsgPlayFailed = "لا يمكن تشغيل الملف. حاول مرة أخرى."
)

// Player controls the backing track on the singer's device.
type Player interface {
	Play(mediaRef string, offset time.Duration)
	Pause()
}

// Recording is a finished capture the singer can download.
type Recording struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Recorder captures the singer's microphone. DiscardCapture stops a capture
// whose recording nobody will download.
type Recorder interface {
	StartCapture()
	StopCapture() Recording
	DiscardCapture()
}

// Scroller keeps a lyric line centered on screen.
type Scroller interface {
	ScrollToLine(index int)
}

// Ports bundles the device capabilities a session drives.
type Ports struct {
	Player   Player
	Recorder Recorder
	Scroller Scroller
}

type Snapshot struct {
	Song       models.Song `json:"song"`
	Phase      Phase       `json:"phase"`
	Position   float64     `json:"position"`
	Duration   float64     `json:"duration"`
	ActiveLine int         `json:"active_line"`
	Recording  *Recording  `json:"recording,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Session is one sing-along of one song.
type Session struct {
	song  models.Song
	ports Ports
	emit  *events.Emitter

	mu        sync.Mutex
	closed    bool
	phase     Phase
	loaded    bool
	position  float64
	duration  float64
	line      int
	capturing bool
	recording *Recording
	errMsg    string
}

func newSession(song models.Song, ports Ports, emit *events.Emitter) *Session {
	return &Session{
		song:  song,
		ports: ports,
		emit:  emit,
		phase: PhaseLoading,
		line:  -1,
	}
}

// MediaLoaded marks the track ready once its metadata arrived.
func (s *Session) MediaLoaded(duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase != PhaseLoading {
		return session.ErrInvalidCommand
	}
	s.loaded = true
	s.duration = duration
	s.errMsg = ""
	s.setPhaseLocked(PhaseReady)
	return nil
}

// MediaError reports that the device could not load or play the track.
func (s *Session) MediaError(detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase == PhaseFailed || s.phase == PhaseFinished {
		return session.ErrInvalidCommand
	}

	msg := MsgPlayFailed
	if !s.loaded {
		msg = MsgLoadFailed
	}
	log.Warn().
		Str("session_id", s.emit.SessionID()).
		Str("song_id", s.song.ID).
		Str("detail", detail).
		Msg("karaoke media error")

	s.discardCaptureLocked()
	s.errMsg = msg
	s.setPhaseLocked(PhaseFailed)
	s.emit.Emit(events.EventTypeMediaFailed, events.MediaFailedPayload{Message: msg, Detail: detail})
	return nil
}

// Play starts or resumes the track and starts capturing if no capture is running.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase != PhaseReady && s.phase != PhasePaused {
		return session.ErrInvalidCommand
	}

	s.ports.Player.Play(s.song.MediaRef, time.Duration(s.position*float64(time.Second)))
	if !s.capturing {
		s.ports.Recorder.StartCapture()
		s.capturing = true
	}
	s.setPhaseLocked(PhasePlaying)
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase != PhasePlaying {
		return session.ErrInvalidCommand
	}
	s.ports.Player.Pause()
	s.setPhaseLocked(PhasePaused)
	return nil
}

// TimeUpdate moves the playhead and re-syncs the highlighted lyric line.
func (s *Session) TimeUpdate(pos float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase != PhasePlaying && s.phase != PhasePaused {
		return session.ErrInvalidCommand
	}

	s.position = pos
	line := ActiveLine(s.song.Lyrics, pos)
	if line == s.line {
		return nil
	}
	s.line = line
	if line >= 0 {
		s.ports.Scroller.ScrollToLine(line)
	}
	s.emit.Emit(events.EventTypeLyricLineChanged, events.LyricLineChangedPayload{Index: line, Position: pos})
	return nil
}

// Ended finishes the performance and hands back the recording.
func (s *Session) Ended() (*Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, session.ErrClosed
	}
	if s.phase != PhasePlaying && s.phase != PhasePaused {
		return nil, session.ErrInvalidCommand
	}

	if s.capturing {
		rec := s.ports.Recorder.StopCapture()
		s.capturing = false
		s.recording = &rec
	}
	s.setPhaseLocked(PhaseFinished)

	log.Info().
		Str("session_id", s.emit.SessionID()).
		Str("song_id", s.song.ID).
		Bool("recorded", s.recording != nil).
		Msg("karaoke performance finished")

	if s.recording == nil {
		return nil, nil
	}
	rec := *s.recording
	return &rec, nil
}

// Restart rewinds to the start. A track that never loaded goes back to loading.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return session.ErrClosed
	}
	if s.phase == PhasePlaying {
		s.ports.Player.Pause()
	}
	s.discardCaptureLocked()
	s.position = 0
	s.line = -1
	s.recording = nil
	s.errMsg = ""
	if s.loaded {
		s.setPhaseLocked(PhaseReady)
	} else {
		s.setPhaseLocked(PhaseLoading)
	}
	return nil
}

func (s *Session) Song() models.Song { return s.song }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Song:       s.song,
		Phase:      s.phase,
		Position:   s.position,
		Duration:   s.duration,
		ActiveLine: s.line,
		Error:      s.errMsg,
	}
	if s.recording != nil {
		rec := *s.recording
		snap.Recording = &rec
	}
	return snap
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.phase == PhasePlaying {
		s.ports.Player.Pause()
	}
	s.discardCaptureLocked()
	s.closed = true
}

func (s *Session) discardCaptureLocked() {
	if !s.capturing {
		return
	}
	s.ports.Recorder.DiscardCapture()
	s.capturing = false
}

func (s *Session) setPhaseLocked(p Phase) {
	s.phase = p
	payload := events.PlaybackChangedPayload{Phase: string(p), Position: s.position}
	if p == PhaseFinished && s.recording != nil {
		payload.Recording = s.recording.URL
	}
	s.emit.Emit(events.EventTypePlaybackChanged, payload)
}
