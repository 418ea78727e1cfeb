package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for everything a session tells the outside world:
// state changes for the client and the results feed, and media commands for the
// player's browser.
type Event struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	PlayerID  string          `json:"player_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventType names an event.
type EventType string

const (
	EventTypeGameSelected     EventType = "GameSelected"
	EventTypeGameExited       EventType = "GameExited"
	EventTypeSessionLoading   EventType = "SessionLoading"
	EventTypeSessionLoadEmpty EventType = "SessionLoadEmpty"
	EventTypeRoundStarted     EventType = "RoundStarted"
	EventTypeTimerTick        EventType = "TimerTick"
	EventTypeAnswerRevealed   EventType = "AnswerRevealed"
	EventTypeSessionFinished  EventType = "SessionFinished"
	EventTypeChatMessage      EventType = "ChatMessage"
	EventTypeLetterChanged    EventType = "LetterChanged"
	EventTypeSongsLoaded      EventType = "SongsLoaded"
	EventTypeSongChosen       EventType = "SongChosen"
	EventTypePlaybackChanged  EventType = "PlaybackChanged"
	EventTypeLyricLineChanged EventType = "LyricLineChanged"
	EventTypeMediaFailed      EventType = "MediaFailed"

	// Commands executed by the player's browser.
	EventTypePlayClip     EventType = "PlayClip"
	EventTypeStopClip     EventType = "StopClip"
	EventTypePlayMedia    EventType = "PlayMedia"
	EventTypePauseMedia   EventType = "PauseMedia"
	EventTypeStartCapture EventType = "StartCapture"
	EventTypeStopCapture  EventType = "StopCapture"
	EventTypeScrollToLine EventType = "ScrollToLine"
)

// IsCommand reports whether the event instructs the client rather than describing state.
func (t EventType) IsCommand() bool {
	switch t {
	case EventTypePlayClip, EventTypeStopClip, EventTypePlayMedia, EventTypePauseMedia,
		EventTypeStartCapture, EventTypeStopCapture, EventTypeScrollToLine:
		return true
	}
	return false
}

// Publisher delivers events somewhere: a websocket fan-out, a message bus, a test recorder.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// New builds an envelope with a fresh ID and the payload marshalled into Data.
func New(sessionID, playerID string, eventType EventType, payload any, at time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Type:      eventType,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", e.Type, err)
	}
	return nil
}
