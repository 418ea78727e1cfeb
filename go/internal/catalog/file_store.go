package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/nota/go/internal/assets"
	"github.com/mcdev12/nota/go/internal/models"
)

// FileStore serves content parsed from YAML.
type FileStore struct {
	content Content
}

// NewFileStore parses data as a catalog file.
func NewFileStore(data []byte) (*FileStore, error) {
	var content Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := content.validate(); err != nil {
		return nil, err
	}
	return &FileStore{content: content}, nil
}

// LoadFileStore reads path, falling back to the embedded catalog when path is empty.
func LoadFileStore(path string) (*FileStore, error) {
	if path == "" {
		return NewFileStore(assets.Catalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return NewFileStore(data)
}

// Content returns the parsed content set.
func (s *FileStore) Content() Content { return s.content }

func (s *FileStore) GuessSongQuestions(context.Context) ([]models.Question, error) {
	return s.content.GuessSong, nil
}

func (s *FileStore) PictureQuestions(context.Context) ([]models.Question, error) {
	return s.content.MusicalPictures, nil
}

func (s *FileStore) KaraokeSongs(context.Context) ([]models.Song, error) {
	return s.content.Karaoke, nil
}

func (s *FileStore) BotSongs(context.Context) ([]models.BotSong, error) {
	return s.content.BotSongs, nil
}

func (c Content) validate() error {
	for _, set := range [][]models.Question{c.GuessSong, c.MusicalPictures} {
		for _, q := range set {
			if err := ValidateQuestion(q); err != nil {
				return err
			}
		}
	}
	for _, song := range c.Karaoke {
		if err := ValidateSong(song); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuestion checks that the correct answer is one of the options.
func ValidateQuestion(q models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question without id")
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("question %s: correct answer %q is not an option", q.ID, q.CorrectAnswer)
}

// ValidateSong checks that lyric times ascend.
func ValidateSong(song models.Song) error {
	for i := 1; i < len(song.Lyrics); i++ {
		if song.Lyrics[i].Time < song.Lyrics[i-1].Time {
			return fmt.Errorf("song %s: lyric %d is out of order", song.ID, i)
		}
	}
	return nil
}
