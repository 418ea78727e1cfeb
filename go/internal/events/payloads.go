package events

import (
	"time"

	"github.com/mcdev12/nota/go/internal/models"
)

// Event payload types shared between the sessions and the gateway

// GameSelectedPayload is the payload for a GameSelected event
type GameSelectedPayload struct {
	Game models.GameID `json:"game"`
}

// GameExitedPayload is the payload for a GameExited event
type GameExitedPayload struct {
	Game  models.GameID `json:"game"`
	Score int           `json:"score"`
}

// SessionLoadingPayload is the payload for SessionLoading and SessionLoadEmpty events
type SessionLoadingPayload struct {
	Game models.GameID `json:"game"`
}

// RoundStartedPayload is the payload for a RoundStarted event
type RoundStartedPayload struct {
	Round           int                 `json:"round"`
	TotalRounds     int                 `json:"total_rounds"`
	Question        models.QuestionView `json:"question"`
	Score           int                 `json:"score"`
	StartedAt       time.Time           `json:"started_at"`
	TimeoutAt       time.Time           `json:"timeout_at"`
	TimePerRoundSec int                 `json:"time_per_round_sec"`
}

// TimerTickPayload is the payload for a TimerTick event
type TimerTickPayload struct {
	Round     int `json:"round"`
	Remaining int `json:"remaining"`
}

// AnswerRevealedPayload is the payload for an AnswerRevealed event
type AnswerRevealedPayload struct {
	Round         int    `json:"round"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
	TimedOut      bool   `json:"timed_out"`
	Points        int    `json:"points"`
	Score         int    `json:"score"`
}

// SessionFinishedPayload is the payload for a SessionFinished event
type SessionFinishedPayload struct {
	Game        models.GameID `json:"game"`
	Score       int           `json:"score"`
	TotalRounds int           `json:"total_rounds,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	Winner      string        `json:"winner,omitempty"`
}

// ChatMessagePayload is the payload for a ChatMessage event
type ChatMessagePayload struct {
	Message models.ChatMessage `json:"message"`
	Score   int                `json:"score"`
}

// LetterChangedPayload is the payload for a LetterChanged event
type LetterChangedPayload struct {
	Letter    string    `json:"letter"`
	Turn      string    `json:"turn"`
	TimeoutAt time.Time `json:"timeout_at"`
}

// SongsLoadedPayload is the payload for a SongsLoaded event
type SongsLoadedPayload struct {
	Songs []models.Song `json:"songs"`
}

// SongChosenPayload is the payload for a SongChosen event
type SongChosenPayload struct {
	Song models.Song `json:"song"`
}

// PlaybackChangedPayload is the payload for a PlaybackChanged event
type PlaybackChangedPayload struct {
	Phase     string  `json:"phase"`
	Position  float64 `json:"position"`
	Recording string  `json:"recording,omitempty"`
}

// LyricLineChangedPayload is the payload for a LyricLineChanged event
type LyricLineChangedPayload struct {
	Index    int     `json:"index"`
	Position float64 `json:"position"`
}

// MediaFailedPayload is the payload for a MediaFailed event
type MediaFailedPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// PlayClipCommand asks the client to play a clip segment
type PlayClipCommand struct {
	ClipRef     string `json:"clip_ref"`
	OffsetSec   int    `json:"offset_sec"`
	DurationSec int    `json:"duration_sec"`
}

// PlayMediaCommand asks the client to play a karaoke track from an offset
type PlayMediaCommand struct {
	MediaRef  string  `json:"media_ref"`
	OffsetSec float64 `json:"offset_sec"`
}

// CaptureCommand asks the client to start or stop microphone capture
type CaptureCommand struct {
	RecordingID string `json:"recording_id"`
	UploadURL   string `json:"upload_url,omitempty"`
}

// ScrollToLineCommand asks the client to center a lyric line
type ScrollToLineCommand struct {
	Index int `json:"index"`
}
