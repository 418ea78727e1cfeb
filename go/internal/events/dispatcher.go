package events

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrDispatcherFull is returned when the dispatch buffer cannot take another event.
var ErrDispatcherFull = errors.New("event dispatcher buffer full")

// Dispatcher fans events out to a set of sinks on its own goroutine so publishers
// never block on slow sinks.
type Dispatcher struct {
	eventCh chan Event
	sinks   []Publisher

	mu      sync.RWMutex
	dropped int64
}

func NewDispatcher(buffer int, sinks ...Publisher) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		eventCh: make(chan Event, buffer),
		sinks:   sinks,
	}
}

// Publish queues an event for every sink.
func (d *Dispatcher) Publish(ctx context.Context, event Event) error {
	select {
	case d.eventCh <- event:
		return nil
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		return ErrDispatcherFull
	}
}

// Run delivers queued events until ctx is done, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case event := <-d.eventCh:
			d.deliver(event)
		}
	}
}

// Dropped returns how many events were refused because the buffer was full.
func (d *Dispatcher) Dropped() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dropped
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.eventCh:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	for _, sink := range d.sinks {
		if err := sink.Publish(context.Background(), event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Msg("sink failed to publish event")
		}
	}
}

// Filter forwards only the events keep accepts.
func Filter(next Publisher, keep func(EventType) bool) Publisher {
	return PublisherFunc(func(ctx context.Context, event Event) error {
		if !keep(event.Type) {
			return nil
		}
		return next.Publish(ctx, event)
	})
}

// FeedEvents selects the events worth recording on the results feed: no ticks, no
// client commands.
func FeedEvents(t EventType) bool {
	return t != EventTypeTimerTick && t != EventTypeLyricLineChanged && !t.IsCommand()
}
