package events

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Emitter stamps events with one session's identity and hands them to a Publisher.
// Emit never fails: a session must not stall because a sink is unhappy.
type Emitter struct {
	sessionID string
	playerID  string
	clock     clockwork.Clock
	publisher Publisher
}

func NewEmitter(sessionID, playerID string, clock clockwork.Clock, publisher Publisher) *Emitter {
	return &Emitter{
		sessionID: sessionID,
		playerID:  playerID,
		clock:     clock,
		publisher: publisher,
	}
}

func (e *Emitter) SessionID() string {
	if e == nil {
		return ""
	}
	return e.sessionID
}

func (e *Emitter) PlayerID() string {
	if e == nil {
		return ""
	}
	return e.playerID
}

// Emit publishes payload under eventType.
func (e *Emitter) Emit(eventType EventType, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	event, err := New(e.sessionID, e.playerID, eventType, payload, e.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("session_id", e.sessionID).Msg("dropping event")
		return
	}

	if err := e.publisher.Publish(context.Background(), event); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", e.sessionID).
			Str("event_type", string(eventType)).
			Msg("failed to publish event")
	}
}
