package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/nota/go/internal/catalog"
	catalogpg "github.com/mcdev12/nota/go/internal/catalog/postgres"
	"github.com/mcdev12/nota/go/internal/dbconfig"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/sqlutil"
)

// counts tracks one table's upsert results.
type counts struct {
	inserted int
	updated  int
	errs     int
}

func (c *counts) record(inserted bool, err error) {
	switch {
	case err != nil:
		c.errs++
	case inserted:
		c.inserted++
	default:
		c.updated++
	}
}

func main() {
	ctx := context.Background()

	// 1) Load the catalog: first argument, CATALOG_FILE, or the embedded default
	path := os.Getenv("CATALOG_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	store, err := catalog.LoadFileStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}
	content := store.Content()

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, catalogpg.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Upsert and count
	var questions, songs, bots counts
	for game, list := range map[models.GameID][]models.Question{
		models.GameGuessSong:       content.GuessSong,
		models.GameMusicalPictures: content.MusicalPictures,
	} {
		for i, q := range list {
			inserted, err := upsertQuestion(ctx, pool, game, i, q)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error upserting question %s: %v\n", q.ID, err)
			}
			questions.record(inserted, err)
		}
	}
	for i, s := range content.Karaoke {
		inserted, err := upsertSong(ctx, pool, i, s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting karaoke song %s: %v\n", s.ID, err)
		}
		songs.record(inserted, err)
	}
	for i, b := range content.BotSongs {
		inserted, err := upsertBotSong(ctx, pool, i, b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting bot song %q: %v\n", b.Title, err)
		}
		bots.record(inserted, err)
	}

	// 4) Print summary
	for _, row := range []struct {
		name string
		c    counts
	}{
		{"questions", questions},
		{"karaoke songs", songs},
		{"bot songs", bots},
	} {
		fmt.Printf("Catalog %s: %d inserted, %d updated, %d errors\n",
			row.name, row.c.inserted, row.c.updated, row.c.errs)
	}
	if questions.errs+songs.errs+bots.errs > 0 {
		os.Exit(1)
	}
}

// xmax is zero only for rows this statement inserted.
const upsertQuestionSQL = `
INSERT INTO catalog_questions (
  id, game, clip_ref, start_time, images, options, correct_answer, position, active
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,TRUE
)
ON CONFLICT (id) DO UPDATE SET
  game = EXCLUDED.game,
  clip_ref = EXCLUDED.clip_ref,
  start_time = EXCLUDED.start_time,
  images = EXCLUDED.images,
  options = EXCLUDED.options,
  correct_answer = EXCLUDED.correct_answer,
  position = EXCLUDED.position,
  active = TRUE,
  updated_at = now()
RETURNING (xmax = 0)
`

func upsertQuestion(ctx context.Context, pool *pgxpool.Pool, game models.GameID, pos int, q models.Question) (bool, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return false, err
	}
	var images []byte
	if len(q.Images) > 0 {
		if images, err = json.Marshal(q.Images); err != nil {
			return false, err
		}
	}
	var start *int
	if q.ClipRef != "" {
		start = &q.StartTime
	}

	var inserted bool
	err = pool.QueryRow(ctx, upsertQuestionSQL,
		q.ID, string(game), sqlutil.ToSqlString(q.ClipRef), sqlutil.ToSqlInt32(start),
		images, options, q.CorrectAnswer, pos,
	).Scan(&inserted)
	return inserted, err
}

const upsertSongSQL = `
INSERT INTO catalog_karaoke_songs (id, title, artist, media_ref, lyrics, position, active)
VALUES ($1,$2,$3,$4,$5,$6,TRUE)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  artist = EXCLUDED.artist,
  media_ref = EXCLUDED.media_ref,
  lyrics = EXCLUDED.lyrics,
  position = EXCLUDED.position,
  active = TRUE,
  updated_at = now()
RETURNING (xmax = 0)
`

func upsertSong(ctx context.Context, pool *pgxpool.Pool, pos int, s models.Song) (bool, error) {
	lyrics, err := json.Marshal(s.Lyrics)
	if err != nil {
		return false, err
	}
	var inserted bool
	err = pool.QueryRow(ctx, upsertSongSQL,
		s.ID, s.Title, s.Artist, s.MediaRef, lyrics, pos,
	).Scan(&inserted)
	return inserted, err
}

const upsertBotSongSQL = `
INSERT INTO catalog_bot_songs (title, artist, position)
VALUES ($1,$2,$3)
ON CONFLICT (title) DO UPDATE SET
  artist = EXCLUDED.artist,
  position = EXCLUDED.position,
  updated_at = now()
RETURNING (xmax = 0)
`

func upsertBotSong(ctx context.Context, pool *pgxpool.Pool, pos int, b models.BotSong) (bool, error) {
	var inserted bool
	err := pool.QueryRow(ctx, upsertBotSongSQL, b.Title, b.Artist, pos).Scan(&inserted)
	return inserted, err
}
