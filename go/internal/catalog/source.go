package catalog

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/models"
)

const (
	DefaultGuessSongBatch = 3
	DefaultPicturesBatch  = 2
)

// Source hands sessions their content. It never fails: a backend error is logged
// and an empty result returned, so the calling session stays in loading.
type Source struct {
	store         Store
	guessSongSize int
	picturesSize  int

	mu  sync.Mutex
	rng *rand.Rand
}

type SourceOption func(*Source)

// WithBatchSizes overrides how many questions each quiz batch holds.
func WithBatchSizes(guessSong, pictures int) SourceOption {
	return func(s *Source) {
		if guessSong > 0 {
			s.guessSongSize = guessSong
		}
		if pictures > 0 {
			s.picturesSize = pictures
		}
	}
}

// WithRand makes shuffling deterministic.
func WithRand(rng *rand.Rand) SourceOption {
	return func(s *Source) { s.rng = rng }
}

func NewSource(store Store, opts ...SourceOption) *Source {
	s := &Source{
		store:         store,
		guessSongSize: DefaultGuessSongBatch,
		picturesSize:  DefaultPicturesBatch,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GuessSongBatch returns a shuffled batch of audio questions.
func (s *Source) GuessSongBatch(ctx context.Context) []models.Question {
	all, err := s.store.GuessSongQuestions(ctx)
	if err != nil {
		log.Warn().Err(err).Str("game", string(models.GameGuessSong)).Msg("failed to fetch questions")
		return nil
	}
	return pick(s, all, s.guessSongSize)
}

// PicturesBatch returns a shuffled batch of picture questions.
func (s *Source) PicturesBatch(ctx context.Context) []models.Question {
	all, err := s.store.PictureQuestions(ctx)
	if err != nil {
		log.Warn().Err(err).Str("game", string(models.GameMusicalPictures)).Msg("failed to fetch questions")
		return nil
	}
	return pick(s, all, s.picturesSize)
}

// KaraokeSongs returns every karaoke song in catalog order.
func (s *Source) KaraokeSongs(ctx context.Context) []models.Song {
	songs, err := s.store.KaraokeSongs(ctx)
	if err != nil {
		log.Warn().Err(err).Str("game", string(models.GameKaraoke)).Msg("failed to fetch songs")
		return nil
	}
	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if err := ValidateSong(song); err != nil {
			log.Warn().Err(err).Str("song_id", song.ID).Msg("skipping invalid karaoke song")
			continue
		}
		out = append(out, song)
	}
	return out
}

// BotSongList returns the songs the song-letter bots know, in catalog order.
func (s *Source) BotSongList(ctx context.Context) []models.BotSong {
	songs, err := s.store.BotSongs(ctx)
	if err != nil {
		log.Warn().Err(err).Str("game", string(models.GameSongLetter)).Msg("failed to fetch bot songs")
		return nil
	}
	out := make([]models.BotSong, len(songs))
	copy(out, songs)
	return out
}

func pick[T any](s *Source, all []T, n int) []T {
	out := make([]T, len(all))
	copy(out, all)

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	if len(out) > n {
		out = out[:n]
	}
	return out
}
