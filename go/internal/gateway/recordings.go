package gateway

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrRecordingTooLarge = errors.New("recording too large")
)

// RecordingsConfig bounds the in-memory recording store.
type RecordingsConfig struct {
	MaxBytes int64
	TTL      time.Duration
}

func DefaultRecordingsConfig() RecordingsConfig {
	return RecordingsConfig{
		MaxBytes: 20 << 20,
		TTL:      time.Hour,
	}
}

// StoredRecording is a captured performance uploaded by the singer's browser.
type StoredRecording struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// RecordingStore keeps karaoke captures in memory until they expire.
// A slot is allocated when capture starts; the browser uploads into it when it stops.
type RecordingStore struct {
	cfg   RecordingsConfig
	clock clockwork.Clock

	mu    sync.Mutex
	slots map[string]*StoredRecording
}

func NewRecordingStore(cfg RecordingsConfig, clock clockwork.Clock) *RecordingStore {
	return &RecordingStore{
		cfg:   cfg,
		clock: clock,
		slots: make(map[string]*StoredRecording),
	}
}

// Allocate reserves an empty slot and returns its ID.
func (s *RecordingStore) Allocate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	id := uuid.NewString()
	s.slots[id] = &StoredRecording{ID: id, CreatedAt: s.clock.Now()}
	return id
}

// Put fills an allocated slot.
func (s *RecordingStore) Put(id, contentType string, data []byte) error {
	if int64(len(data)) > s.cfg.MaxBytes {
		return fmt.Errorf("%w: %d bytes", ErrRecordingTooLarge, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return ErrRecordingNotFound
	}
	slot.ContentType = contentType
	slot.Data = data

	log.Debug().Str("recording_id", id).Int("bytes", len(data)).Msg("recording stored")
	return nil
}

// Get returns an uploaded recording. Allocated but empty slots are not found.
func (s *RecordingStore) Get(id string) (StoredRecording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	slot, ok := s.slots[id]
	if !ok || slot.Data == nil {
		return StoredRecording{}, ErrRecordingNotFound
	}
	return *slot, nil
}

func (s *RecordingStore) Discard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, id)
}

func (s *RecordingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *RecordingStore) expireLocked() {
	if s.cfg.TTL <= 0 {
		return
	}
	cutoff := s.clock.Now().Add(-s.cfg.TTL)
	for id, slot := range s.slots {
		if slot.CreatedAt.Before(cutoff) {
			delete(s.slots, id)
		}
	}
}
