package shell

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/events/eventstest"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/session/songletter"
)

var questions = []models.Question{
	{ID: "mp1", Images: []string{"a.jpg", "b.jpg"}, Options: []string{"x", "y"}, CorrectAnswer: "x"},
	{ID: "mp2", Images: []string{"c.jpg"}, Options: []string{"x", "y"}, CorrectAnswer: "y"},
}

func testFactories(clock clockwork.Clock) map[models.GameID]Factory {
	return map[models.GameID]Factory{
		models.GameMusicalPictures: func(emit *events.Emitter) Session {
			load := func(context.Context) []models.Question { return questions }
			return quiz.New(quiz.PicturesConfig(), load, nil, clock, emit)
		},
		models.GameSongLetter: func(emit *events.Emitter) Session {
			load := func(context.Context) []models.BotSong {
				return []models.BotSong{{Title: "تملي معاك", Artist: "Amr Diab"}}
			}
			return songletter.New(songletter.DefaultConfig(), load, songletter.NewRandomStrategy(), clock, emit)
		},
		models.GameKaraoke: func(emit *events.Emitter) Session {
			load := func(context.Context) []models.Song {
				return []models.Song{{ID: "k1", Title: "Ya Tabtab", MediaRef: "xyz"}}
			}
			return karaoke.NewLobby(load, karaoke.Ports{}, emit)
		},
	}
}

func newController(t *testing.T, enabled []string) (*Controller, *eventstest.Recorder) {
	t.Helper()
	catalog, err := games.Enabled(enabled)
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	clock := clockwork.NewFakeClock()
	rec := &eventstest.Recorder{}
	c := NewController("p-1", catalog, testFactories(clock), clock, rec)
	t.Cleanup(c.Close)
	return c, rec
}

func TestController_SelectSwitchesSessions(t *testing.T) {
	c, rec := newController(t, nil)
	ctx := context.Background()

	if _, err := c.Active(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Active on fresh shell err = %v", err)
	}

	if _, err := c.Select(ctx, models.GameMusicalPictures); err != nil {
		t.Fatalf("Select pictures: %v", err)
	}
	q, err := c.Quiz()
	if err != nil {
		t.Fatalf("Quiz: %v", err)
	}
	res, err := q.Answer("x")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Score != 200 {
		t.Fatalf("score = %d, want 200", res.Score)
	}

	if _, err := c.Select(ctx, models.GameSongLetter); err != nil {
		t.Fatalf("Select song-letter: %v", err)
	}
	if _, err := q.Next(); !errors.Is(err, session.ErrClosed) {
		t.Fatalf("old quiz still usable: err = %v", err)
	}
	if _, err := c.Quiz(); !errors.Is(err, ErrWrongGame) {
		t.Fatalf("Quiz while song-letter active err = %v, want ErrWrongGame", err)
	}
	if _, err := c.SongLetter(); err != nil {
		t.Fatalf("SongLetter: %v", err)
	}

	exited := rec.OfType(events.EventTypeGameExited)
	if len(exited) != 1 {
		t.Fatalf("GameExited events = %d, want 1", len(exited))
	}
	var payload events.GameExitedPayload
	if err := exited[0].Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := events.GameExitedPayload{Game: models.GameMusicalPictures, Score: 200}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("GameExited payload mismatch (-want +got):\n%s", diff)
	}

	selected := rec.OfType(events.EventTypeGameSelected)
	if len(selected) != 2 || selected[0].SessionID == selected[1].SessionID {
		t.Fatalf("want two GameSelected events with distinct session ids, got %+v", selected)
	}
}

func TestController_ExitAndErrors(t *testing.T) {
	c, _ := newController(t, []string{"musical-pictures", "karaoke"})
	ctx := context.Background()

	if err := c.Exit(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Exit on home err = %v", err)
	}
	if _, err := c.Select(ctx, models.GameSongLetter); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("Select disabled game err = %v, want ErrUnknownGame", err)
	}
	if _, err := c.Select(ctx, "chess"); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("Select unknown game err = %v", err)
	}
	if err := c.Restart(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Restart on home err = %v", err)
	}

	if _, err := c.Select(ctx, models.GameKaraoke); err != nil {
		t.Fatalf("Select karaoke: %v", err)
	}
	if _, err := c.Karaoke(); err != nil {
		t.Fatalf("Karaoke: %v", err)
	}
	if err := c.Exit(); err != nil {
		t.Fatalf("Exit: %v", err)
	}
	if _, err := c.Karaoke(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("Karaoke after exit err = %v", err)
	}
}

func TestController_State(t *testing.T) {
	c, _ := newController(t, nil)

	home := c.State()
	if home.Active != "" || len(home.Games) != 4 {
		t.Fatalf("home state = %+v", home)
	}

	if _, err := c.Select(context.Background(), models.GameKaraoke); err != nil {
		t.Fatalf("Select: %v", err)
	}
	state := c.State()
	if state.Active != models.GameKaraoke || state.Karaoke == nil || state.Quiz != nil || state.SongLetter != nil {
		t.Fatalf("karaoke state = %+v", state)
	}
	if state.Karaoke.Phase != karaoke.LobbyBrowsing || len(state.Karaoke.Songs) != 1 {
		t.Fatalf("lobby snapshot = %+v", state.Karaoke)
	}
}

func TestHub_ControllerPerPlayer(t *testing.T) {
	catalog, err := games.Enabled(nil)
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	clock := clockwork.NewFakeClock()
	h := NewHub(catalog, testFactories(clock), clock, &eventstest.Recorder{})
	t.Cleanup(h.Close)

	a := h.Controller("alice")
	if h.Controller("alice") != a {
		t.Fatalf("same player got a different controller")
	}
	if h.Controller("bob") == a {
		t.Fatalf("players share a controller")
	}
	if got := h.Players(); got != 2 {
		t.Fatalf("Players = %d, want 2", got)
	}
}

func TestHub_SweepReleasesIdleShells(t *testing.T) {
	catalog, err := games.Enabled(nil)
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	clock := clockwork.NewFakeClock()
	online := map[string]bool{"online": true}
	h := NewHub(catalog, testFactories(clock), clock, &eventstest.Recorder{},
		WithIdleTimeout(time.Minute),
		WithPresence(func(playerID string) bool { return online[playerID] }))
	t.Cleanup(h.Close)

	var sessions []*quiz.Session
	for i := 0; i < 50; i++ {
		c := h.Controller(fmt.Sprintf("guest-%d", i))
		if _, err := c.Select(context.Background(), models.GameMusicalPictures); err != nil {
			t.Fatalf("Select: %v", err)
		}
		q, err := c.Quiz()
		if err != nil {
			t.Fatalf("Quiz: %v", err)
		}
		sessions = append(sessions, q)
	}
	h.Controller("online")
	h.Controller("returning")

	if got := h.Sweep(); got != 0 {
		t.Fatalf("Sweep before timeout removed %d shells", got)
	}

	clock.Advance(40 * time.Second)
	h.Touch("returning")
	clock.Advance(30 * time.Second)

	if got := h.Sweep(); got != 50 {
		t.Fatalf("Sweep removed %d shells, want 50", got)
	}
	if got := h.Players(); got != 2 {
		t.Fatalf("Players after sweep = %d, want 2", got)
	}
	for _, q := range sessions {
		if _, err := q.Answer("x"); !errors.Is(err, session.ErrClosed) {
			t.Fatalf("swept session still open: err = %v", err)
		}
	}

	clock.Advance(time.Minute)
	if got := h.Sweep(); got != 1 {
		t.Fatalf("second Sweep removed %d shells, want 1", got)
	}
	if got := h.Players(); got != 1 {
		t.Fatalf("connected player's shell was removed")
	}
}
