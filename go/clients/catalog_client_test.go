package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mcdev12/nota/go/internal/models"
)

func TestCatalogClient_GuessSongQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != guessSongEndpoint {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":1,"response":[{"id":"gs1","clip_ref":"abc","start_time":60,"options":["a","b"],"correct_answer":"a"}]}`))
	}))
	defer srv.Close()

	c := NewCatalogClient(srv.URL, "k")
	got, err := c.GuessSongQuestions(context.Background())
	if err != nil {
		t.Fatalf("GuessSongQuestions: %v", err)
	}
	want := []models.Question{{ID: "gs1", ClipRef: "abc", StartTime: 60, Options: []string{"a", "b"}, CorrectAnswer: "a"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogClient_BotSongs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":1,"response":[{"title":"كيفك انت","artist":"Fairuz"}]}`))
	}))
	defer srv.Close()

	got, err := NewCatalogClient(srv.URL, "").BotSongs(context.Background())
	if err != nil {
		t.Fatalf("BotSongs: %v", err)
	}
	if diff := cmp.Diff([]models.BotSong{{Title: "كيفك انت", Artist: "Fairuz"}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewCatalogClient(srv.URL, "").KaraokeSongs(context.Background()); err == nil {
		t.Fatalf("expected error for 502")
	}
}

func TestCatalogClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := NewCatalogClient(srv.URL, "").PictureQuestions(context.Background()); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}
