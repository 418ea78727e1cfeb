package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/nota/go/internal/models"
)

type fakeQuerier struct {
	questions map[string][]CatalogQuestion
	songs     []CatalogKaraokeSong
	botSongs  []CatalogBotSong
	err       error
}

func (f *fakeQuerier) ListActiveQuestions(_ context.Context, game string) ([]CatalogQuestion, error) {
	return f.questions[game], f.err
}

func (f *fakeQuerier) ListActiveKaraokeSongs(context.Context) ([]CatalogKaraokeSong, error) {
	return f.songs, f.err
}

func (f *fakeQuerier) ListBotSongs(context.Context) ([]CatalogBotSong, error) {
	return f.botSongs, f.err
}

func TestRepository_GuessSongQuestions(t *testing.T) {
	q := &fakeQuerier{questions: map[string][]CatalogQuestion{
		"guess-song": {{
			ID:            "gs1",
			Game:          "guess-song",
			ClipRef:       sql.NullString{String: "g-3-4432", Valid: true},
			StartTime:     sql.NullInt32{Int32: 60, Valid: true},
			Options:       json.RawMessage(`["a","b"]`),
			CorrectAnswer: "a",
		}},
	}}

	got, err := NewRepository(q).GuessSongQuestions(context.Background())
	if err != nil {
		t.Fatalf("GuessSongQuestions: %v", err)
	}
	want := []models.Question{{ID: "gs1", ClipRef: "g-3-4432", StartTime: 60, Options: []string{"a", "b"}, CorrectAnswer: "a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_PictureQuestionsDecodeImages(t *testing.T) {
	q := &fakeQuerier{questions: map[string][]CatalogQuestion{
		"musical-pictures": {{
			ID:            "mp1",
			Images:        pqtype.NullRawMessage{RawMessage: json.RawMessage(`["x.png","y.png"]`), Valid: true},
			Options:       json.RawMessage(`["a"]`),
			CorrectAnswer: "a",
		}},
	}}

	got, err := NewRepository(q).PictureQuestions(context.Background())
	if err != nil {
		t.Fatalf("PictureQuestions: %v", err)
	}
	if diff := cmp.Diff([]string{"x.png", "y.png"}, got[0].Images); diff != "" {
		t.Fatalf("images mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_KaraokeSongs(t *testing.T) {
	q := &fakeQuerier{songs: []CatalogKaraokeSong{{
		ID: "k3", Title: "Lama Bada Yatathanna", Artist: "Traditional", MediaRef: "qwerty456",
		Lyrics: json.RawMessage(`[{"time":5,"text":"لما بدا يتثنى"},{"time":9,"text":"حبي جماله فتنا"}]`),
	}}}

	got, err := NewRepository(q).KaraokeSongs(context.Background())
	if err != nil {
		t.Fatalf("KaraokeSongs: %v", err)
	}
	want := []models.Song{{
		ID: "k3", Title: "Lama Bada Yatathanna", Artist: "Traditional", MediaRef: "qwerty456",
		Lyrics: []models.LyricLine{{Time: 5, Text: "لما بدا يتثنى"}, {Time: 9, Text: "حبي جماله فتنا"}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestRepository_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewRepository(&fakeQuerier{err: boom})
	ctx := context.Background()

	if _, err := r.BotSongs(ctx); !errors.Is(err, boom) {
		t.Fatalf("BotSongs err = %v, want wrapped boom", err)
	}
	if _, err := r.GuessSongQuestions(ctx); !errors.Is(err, boom) {
		t.Fatalf("GuessSongQuestions err = %v, want wrapped boom", err)
	}

	bad := NewRepository(&fakeQuerier{songs: []CatalogKaraokeSong{{ID: "k", Lyrics: json.RawMessage(`{`)}}})
	if _, err := bad.KaraokeSongs(ctx); err == nil {
		t.Fatalf("expected lyrics decode error")
	}
}
