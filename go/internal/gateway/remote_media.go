package gateway

import (
	"sync"
	"time"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
)

// RecordingPath is where a recording is uploaded to and downloaded from.
func RecordingPath(id string) string {
	return "/recordings/" + id
}

// RemoteClip plays quiz clips by sending commands to the player's browser.
type RemoteClip struct {
	emit *events.Emitter
}

func NewRemoteClip(emit *events.Emitter) *RemoteClip {
	return &RemoteClip{emit: emit}
}

func (c *RemoteClip) Play(clipRef string, offset, duration time.Duration) {
	c.emit.Emit(events.EventTypePlayClip, events.PlayClipCommand{
		ClipRef:     clipRef,
		OffsetSec:   int(offset / time.Second),
		DurationSec: int(duration / time.Second),
	})
}

func (c *RemoteClip) Stop() {
	c.emit.Emit(events.EventTypeStopClip, struct{}{})
}

// RemoteDevice drives karaoke playback, capture and scrolling in the browser.
// The browser uploads each capture to the slot named in its StartCapture command.
type RemoteDevice struct {
	emit       *events.Emitter
	recordings *RecordingStore

	mu      sync.Mutex
	current string
}

func NewRemoteDevice(emit *events.Emitter, recordings *RecordingStore) *RemoteDevice {
	return &RemoteDevice{emit: emit, recordings: recordings}
}

// Ports exposes the device as the karaoke session's ports.
func (d *RemoteDevice) Ports() karaoke.Ports {
	return karaoke.Ports{Player: d, Recorder: d, Scroller: d}
}

func (d *RemoteDevice) Play(mediaRef string, offset time.Duration) {
	d.emit.Emit(events.EventTypePlayMedia, events.PlayMediaCommand{
		MediaRef:  mediaRef,
		OffsetSec: offset.Seconds(),
	})
}

func (d *RemoteDevice) Pause() {
	d.emit.Emit(events.EventTypePauseMedia, struct{}{})
}

func (d *RemoteDevice) StartCapture() {
	id := d.recordings.Allocate()

	d.mu.Lock()
	if d.current != "" {
		d.recordings.Discard(d.current)
	}
	d.current = id
	d.mu.Unlock()

	d.emit.Emit(events.EventTypeStartCapture, events.CaptureCommand{RecordingID: id})
}

// StopCapture tells the browser to stop and upload, and returns where the
// recording will be downloadable.
func (d *RemoteDevice) StopCapture() karaoke.Recording {
	d.mu.Lock()
	id := d.current
	d.current = ""
	d.mu.Unlock()

	d.emit.Emit(events.EventTypeStopCapture, events.CaptureCommand{RecordingID: id, UploadURL: RecordingPath(id)})
	return karaoke.Recording{ID: id, URL: RecordingPath(id)}
}

// DiscardCapture tells the browser to stop without uploading and frees the slot.
func (d *RemoteDevice) DiscardCapture() {
	d.mu.Lock()
	id := d.current
	d.current = ""
	d.mu.Unlock()

	if id == "" {
		return
	}
	d.recordings.Discard(id)
	d.emit.Emit(events.EventTypeStopCapture, events.CaptureCommand{RecordingID: id})
}

func (d *RemoteDevice) ScrollToLine(index int) {
	d.emit.Emit(events.EventTypeScrollToLine, events.ScrollToLineCommand{Index: index})
}
