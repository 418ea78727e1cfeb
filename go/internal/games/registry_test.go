package games

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/nota/go/internal/models"
)

func TestAll_ListsBuiltinsInHomeOrder(t *testing.T) {
	var ids []models.GameID
	for _, g := range All() {
		ids = append(ids, g.ID)
	}
	want := []models.GameID{
		models.GameGuessSong,
		models.GameMusicalPictures,
		models.GameKaraoke,
		models.GameSongLetter,
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("game order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_RejectsDuplicatesAndEmpty(t *testing.T) {
	if err := Register(Game{ID: models.GameKaraoke}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := Register(Game{}); err == nil {
		t.Fatalf("expected empty id to fail")
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		want    []models.GameID
		wantErr bool
	}{
		{
			name: "empty enables all",
			want: []models.GameID{models.GameGuessSong, models.GameMusicalPictures, models.GameKaraoke, models.GameSongLetter},
		},
		{
			name: "subset keeps config order",
			ids:  []string{"song-letter", "guess-song", "song-letter"},
			want: []models.GameID{models.GameSongLetter, models.GameGuessSong},
		},
		{
			name:    "unknown id",
			ids:     []string{"trivia"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Enabled(tt.ids)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Enabled: %v", err)
			}
			var got []models.GameID
			for _, g := range c.List() {
				got = append(got, g.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			if _, ok := c.Lookup(tt.want[0]); !ok {
				t.Fatalf("Lookup(%s) = false", tt.want[0])
			}
		})
	}
}
