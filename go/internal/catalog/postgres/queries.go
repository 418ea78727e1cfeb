package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"

	"github.com/sqlc-dev/pqtype"
)

// Schema creates the catalog tables and change-notification triggers.
//
//go:embed schema.sql
var Schema string

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type CatalogQuestion struct {
	ID            string
	Game          string
	ClipRef       sql.NullString
	StartTime     sql.NullInt32
	Images        pqtype.NullRawMessage
	Options       json.RawMessage
	CorrectAnswer string
}

type CatalogKaraokeSong struct {
	ID       string
	Title    string
	Artist   string
	MediaRef string
	Lyrics   json.RawMessage
}

type CatalogBotSong struct {
	Title  string
	Artist string
}

const listActiveQuestions = `-- name: ListActiveQuestions :many
SELECT id, game, clip_ref, start_time, images, options, correct_answer
FROM catalog_questions
WHERE game = $1 AND active
ORDER BY position, id
`

func (q *Queries) ListActiveQuestions(ctx context.Context, game string) ([]CatalogQuestion, error) {
	rows, err := q.db.QueryContext(ctx, listActiveQuestions, game)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogQuestion
	for rows.Next() {
		var i CatalogQuestion
		if err := rows.Scan(
			&i.ID,
			&i.Game,
			&i.ClipRef,
			&i.StartTime,
			&i.Images,
			&i.Options,
			&i.CorrectAnswer,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActiveKaraokeSongs = `-- name: ListActiveKaraokeSongs :many
SELECT id, title, artist, media_ref, lyrics
FROM catalog_karaoke_songs
WHERE active
ORDER BY position, id
`

func (q *Queries) ListActiveKaraokeSongs(ctx context.Context) ([]CatalogKaraokeSong, error) {
	rows, err := q.db.QueryContext(ctx, listActiveKaraokeSongs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogKaraokeSong
	for rows.Next() {
		var i CatalogKaraokeSong
		if err := rows.Scan(&i.ID, &i.Title, &i.Artist, &i.MediaRef, &i.Lyrics); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listBotSongs = `-- name: ListBotSongs :many
SELECT title, artist
FROM catalog_bot_songs
ORDER BY position, title
`

func (q *Queries) ListBotSongs(ctx context.Context) ([]CatalogBotSong, error) {
	rows, err := q.db.QueryContext(ctx, listBotSongs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CatalogBotSong
	for rows.Next() {
		var i CatalogBotSong
		if err := rows.Scan(&i.Title, &i.Artist); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
