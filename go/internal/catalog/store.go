// Package catalog supplies game content: quiz questions, karaoke songs and the
// song list the song-letter bots answer from.
package catalog

import (
	"context"

	"github.com/mcdev12/nota/go/internal/models"
)

// Store is a backend holding the full content set. Implementations return errors;
// Source is the layer that turns them into empty results.
type Store interface {
	GuessSongQuestions(ctx context.Context) ([]models.Question, error)
	PictureQuestions(ctx context.Context) ([]models.Question, error)
	KaraokeSongs(ctx context.Context) ([]models.Song, error)
	BotSongs(ctx context.Context) ([]models.BotSong, error)
}

// Content is the on-disk shape of a catalog file.
type Content struct {
	GuessSong       []models.Question `yaml:"guess_song"`
	MusicalPictures []models.Question `yaml:"musical_pictures"`
	Karaoke         []models.Song     `yaml:"karaoke"`
	BotSongs        []models.BotSong  `yaml:"bot_songs"`
}
