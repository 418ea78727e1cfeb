package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/events/eventstest"
)

func TestEmitter_StampsEnvelope(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(at)
	rec := &eventstest.Recorder{}

	em := events.NewEmitter("s-1", "p-1", clock, rec)
	em.Emit(events.EventTypeTimerTick, events.TimerTickPayload{Round: 2, Remaining: 7})

	got := rec.Events()
	if len(got) != 1 {
		t.Fatalf("recorded %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.ID == "" {
		t.Fatalf("event ID is empty")
	}
	if ev.SessionID != "s-1" || ev.PlayerID != "p-1" {
		t.Fatalf("envelope ids = %q/%q", ev.SessionID, ev.PlayerID)
	}
	if !ev.Timestamp.Equal(at) {
		t.Fatalf("Timestamp = %v, want %v", ev.Timestamp, at)
	}

	var payload events.TimerTickPayload
	if err := ev.Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(events.TimerTickPayload{Round: 2, Remaining: 7}, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitter_NilIsNoop(t *testing.T) {
	var em *events.Emitter
	em.Emit(events.EventTypeTimerTick, nil)
}

func TestFeedEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		eventType events.EventType
		want      bool
	}{
		{events.EventTypeRoundStarted, true},
		{events.EventTypeSessionFinished, true},
		{events.EventTypeChatMessage, true},
		{events.EventTypeTimerTick, false},
		{events.EventTypeLyricLineChanged, false},
		{events.EventTypePlayClip, false},
		{events.EventTypeScrollToLine, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := events.FeedEvents(tt.eventType); got != tt.want {
				t.Fatalf("FeedEvents(%s) = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestDispatcher_FansOutToSinks(t *testing.T) {
	all := &eventstest.Recorder{}
	feed := &eventstest.Recorder{}
	d := events.NewDispatcher(16, all, events.Filter(feed, events.FeedEvents))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	clock := clockwork.NewFakeClock()
	em := events.NewEmitter("s", "p", clock, d)
	em.Emit(events.EventTypeRoundStarted, events.RoundStartedPayload{Round: 1})
	em.Emit(events.EventTypeTimerTick, events.TimerTickPayload{Round: 1, Remaining: 14})
	em.Emit(events.EventTypeAnswerRevealed, events.AnswerRevealedPayload{Round: 1})

	cancel()
	<-done

	wantAll := []events.EventType{
		events.EventTypeRoundStarted,
		events.EventTypeTimerTick,
		events.EventTypeAnswerRevealed,
	}
	if diff := cmp.Diff(wantAll, all.Types()); diff != "" {
		t.Fatalf("all sink mismatch (-want +got):\n%s", diff)
	}
	wantFeed := []events.EventType{events.EventTypeRoundStarted, events.EventTypeAnswerRevealed}
	if diff := cmp.Diff(wantFeed, feed.Types()); diff != "" {
		t.Fatalf("feed sink mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcher_RefusesWhenFull(t *testing.T) {
	d := events.NewDispatcher(1)
	ev := events.Event{ID: "1", Type: events.EventTypeTimerTick}

	if err := d.Publish(context.Background(), ev); err != nil {
		t.Fatalf("first Publish: %v", err)
	}
	if err := d.Publish(context.Background(), ev); err != events.ErrDispatcherFull {
		t.Fatalf("second Publish err = %v, want ErrDispatcherFull", err)
	}
	if got := d.Dropped(); got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
}
