// Package postgres stores the game catalog in Postgres.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	ListActiveQuestions(ctx context.Context, game string) ([]CatalogQuestion, error)
	ListActiveKaraokeSongs(ctx context.Context) ([]CatalogKaraokeSong, error)
	ListBotSongs(ctx context.Context) ([]CatalogBotSong, error)
}

// Repository implements catalog.Store over the catalog tables
type Repository struct {
	queries Querier
}

// NewRepository creates a new catalog repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

func (r *Repository) GuessSongQuestions(ctx context.Context) ([]models.Question, error) {
	return r.listQuestions(ctx, models.GameGuessSong)
}

func (r *Repository) PictureQuestions(ctx context.Context) ([]models.Question, error) {
	return r.listQuestions(ctx, models.GameMusicalPictures)
}

func (r *Repository) listQuestions(ctx context.Context, game models.GameID) ([]models.Question, error) {
	rows, err := r.queries.ListActiveQuestions(ctx, string(game))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s questions: %w", game, err)
	}

	questions := make([]models.Question, 0, len(rows))
	for _, row := range rows {
		q, err := r.dbQuestionToModel(row)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *Repository) KaraokeSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := r.queries.ListActiveKaraokeSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list karaoke songs: %w", err)
	}

	songs := make([]models.Song, 0, len(rows))
	for _, row := range rows {
		song := models.Song{
			ID:       row.ID,
			Title:    row.Title,
			Artist:   row.Artist,
			MediaRef: row.MediaRef,
		}
		if err := json.Unmarshal(row.Lyrics, &song.Lyrics); err != nil {
			return nil, fmt.Errorf("failed to decode lyrics for song %s: %w", row.ID, err)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

func (r *Repository) BotSongs(ctx context.Context) ([]models.BotSong, error) {
	rows, err := r.queries.ListBotSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bot songs: %w", err)
	}

	songs := make([]models.BotSong, len(rows))
	for i, row := range rows {
		songs[i] = models.BotSong{Title: row.Title, Artist: row.Artist}
	}
	return songs, nil
}

func (r *Repository) dbQuestionToModel(row CatalogQuestion) (models.Question, error) {
	q := models.Question{
		ID:            row.ID,
		ClipRef:       sqlutil.FromSqlString(row.ClipRef, ""),
		StartTime:     sqlutil.FromSqlInt32(row.StartTime, 0),
		CorrectAnswer: row.CorrectAnswer,
	}
	if err := json.Unmarshal(row.Options, &q.Options); err != nil {
		return models.Question{}, fmt.Errorf("failed to decode options for question %s: %w", row.ID, err)
	}
	if err := sqlutil.FromNullRawMessage(row.Images, &q.Images); err != nil {
		return models.Question{}, fmt.Errorf("question %s: %w", row.ID, err)
	}
	return q, nil
}
