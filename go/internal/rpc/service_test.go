package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/events/eventstest"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/gateway"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/shell"
)

var pictureQuestions = []models.Question{
	{ID: "mp1", Images: []string{"a.jpg"}, Options: []string{"x", "y"}, CorrectAnswer: "x"},
	{ID: "mp2", Images: []string{"b.jpg"}, Options: []string{"x", "y"}, CorrectAnswer: "y"},
}

var karaokeSongs = []models.Song{{
	ID: "k1", Title: "Ya Tabtab", Artist: "Nancy Ajram", MediaRef: "xyz",
	Lyrics: []models.LyricLine{{Time: 2, Text: "يا طبطب"}, {Time: 6, Text: "ودلع"}},
}}

type testEnv struct {
	url        string
	rec        *eventstest.Recorder
	recordings *gateway.RecordingStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := &eventstest.Recorder{}
	recordings := gateway.NewRecordingStore(gateway.DefaultRecordingsConfig(), clock)

	factories := map[models.GameID]shell.Factory{
		models.GameMusicalPictures: func(emit *events.Emitter) shell.Session {
			load := func(context.Context) []models.Question { return pictureQuestions }
			return quiz.New(quiz.PicturesConfig(), load, nil, clock, emit)
		},
		models.GameKaraoke: func(emit *events.Emitter) shell.Session {
			load := func(context.Context) []models.Song { return karaokeSongs }
			return karaoke.NewLobby(load, gateway.NewRemoteDevice(emit, recordings).Ports(), emit)
		},
	}
	catalog, err := games.Enabled([]string{"musical-pictures", "karaoke", "song-letter"})
	if err != nil {
		t.Fatalf("Enabled: %v", err)
	}
	hub := shell.NewHub(catalog, factories, clock, rec)

	mux := http.NewServeMux()
	mux.Handle(NewGameServiceHandler(NewService(hub)))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return &testEnv{url: srv.URL, rec: rec, recordings: recordings}
}

func (e *testEnv) client(playerID string) *GameServiceClient {
	return NewGameServiceClient(http.DefaultClient, e.url, playerID)
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("code = %s, want %s (err: %v)", got, code, err)
	}
}

func TestGameService_RequiresPlayerID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.client("").ListGames(context.Background())
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestGameService_ShellNavigation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client("p-1")

	list, err := c.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(list.Games) != 3 || list.Games[0].ID != models.GameMusicalPictures {
		t.Fatalf("games = %+v", list.Games)
	}

	_, err = c.SelectGame(ctx, &SelectGameRequest{Game: "chess"})
	wantCode(t, err, connect.CodeNotFound)
	_, err = c.SelectGame(ctx, &SelectGameRequest{Game: models.GameGuessSong})
	wantCode(t, err, connect.CodeNotFound)
	_, err = c.ExitGame(ctx)
	wantCode(t, err, connect.CodeFailedPrecondition)

	state, err := c.SelectGame(ctx, &SelectGameRequest{Game: models.GameMusicalPictures})
	if err != nil {
		t.Fatalf("SelectGame: %v", err)
	}
	if state.State.Active != models.GameMusicalPictures || state.State.Quiz == nil || state.State.Quiz.Phase != models.PhasePlaying {
		t.Fatalf("state = %+v", state.State)
	}

	// another player is independent
	other, err := env.client("p-2").GetState(ctx)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if other.State.Active != "" {
		t.Fatalf("p-2 sees an active game: %+v", other.State)
	}

	state, err = c.ExitGame(ctx)
	if err != nil {
		t.Fatalf("ExitGame: %v", err)
	}
	if state.State.Active != "" || state.State.Quiz != nil {
		t.Fatalf("state after exit = %+v", state.State)
	}
}

func TestGameService_QuizRound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client("p-1")

	_, err := c.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "x"})
	wantCode(t, err, connect.CodeFailedPrecondition)

	if _, err := c.SelectGame(ctx, &SelectGameRequest{Game: models.GameMusicalPictures}); err != nil {
		t.Fatalf("SelectGame: %v", err)
	}

	_, err = c.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "z"})
	wantCode(t, err, connect.CodeInvalidArgument)
	err = c.PlayClip(ctx)
	wantCode(t, err, connect.CodeFailedPrecondition)
	_, err = c.SubmitSong(ctx, &SubmitSongRequest{Text: "تملي معاك"})
	wantCode(t, err, connect.CodeFailedPrecondition)
	_, err = c.NextQuestion(ctx)
	wantCode(t, err, connect.CodeFailedPrecondition)

	answer, err := c.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "x"})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !answer.Result.Correct || answer.Result.Score != 200 {
		t.Fatalf("result = %+v", answer.Result)
	}

	next, err := c.NextQuestion(ctx)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if next.Quiz.Round != 2 || next.Quiz.Question == nil || next.Quiz.Question.ID != "mp2" {
		t.Fatalf("next = %+v", next.Quiz)
	}

	restarted, err := c.RestartSession(ctx)
	if err != nil {
		t.Fatalf("RestartSession: %v", err)
	}
	if q := restarted.State.Quiz; q == nil || q.Score != 0 || q.Round != 1 {
		t.Fatalf("after restart = %+v", restarted.State.Quiz)
	}
}

func TestGameService_KaraokePerformance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.client("p-1")

	if _, err := c.SelectGame(ctx, &SelectGameRequest{Game: models.GameKaraoke}); err != nil {
		t.Fatalf("SelectGame: %v", err)
	}
	songs, err := c.ListSongs(ctx)
	if err != nil {
		t.Fatalf("ListSongs: %v", err)
	}
	if len(songs.Songs) != 1 {
		t.Fatalf("songs = %+v", songs.Songs)
	}

	_, err = c.Play(ctx)
	wantCode(t, err, connect.CodeFailedPrecondition)
	_, err = c.ChooseSong(ctx, &ChooseSongRequest{SongID: "nope"})
	wantCode(t, err, connect.CodeNotFound)

	if _, err := c.ChooseSong(ctx, &ChooseSongRequest{SongID: "k1"}); err != nil {
		t.Fatalf("ChooseSong: %v", err)
	}
	if _, err := c.MediaLoaded(ctx, &MediaLoadedRequest{Duration: 180}); err != nil {
		t.Fatalf("MediaLoaded: %v", err)
	}
	if _, err := c.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	upd, err := c.TimeUpdate(ctx, &TimeUpdateRequest{Position: 7})
	if err != nil {
		t.Fatalf("TimeUpdate: %v", err)
	}
	if upd.Karaoke.ActiveLine != 1 {
		t.Fatalf("active line = %d, want 1", upd.Karaoke.ActiveLine)
	}

	ended, err := c.Ended(ctx)
	if err != nil {
		t.Fatalf("Ended: %v", err)
	}
	if ended.Recording == nil || !strings.HasPrefix(ended.Recording.URL, "/recordings/") {
		t.Fatalf("recording = %+v", ended.Recording)
	}
	if ended.Karaoke.Phase != karaoke.PhaseFinished {
		t.Fatalf("phase = %s", ended.Karaoke.Phase)
	}
	if err := env.recordings.Put(ended.Recording.ID, "audio/webm", []byte("take-1")); err != nil {
		t.Fatalf("upload slot missing: %v", err)
	}

	lobby, err := c.LeaveSong(ctx)
	if err != nil {
		t.Fatalf("LeaveSong: %v", err)
	}
	if lobby.Lobby.Phase != karaoke.LobbyBrowsing {
		t.Fatalf("lobby phase = %s", lobby.Lobby.Phase)
	}
	if got := env.rec.Count(events.EventTypeStartCapture); got != 1 {
		t.Fatalf("StartCapture commands = %d, want 1", got)
	}
}

func TestToConnectError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want connect.Code
	}{
		{shell.ErrUnknownGame, connect.CodeNotFound},
		{session.ErrSongNotFound, connect.CodeNotFound},
		{session.ErrUnknownOption, connect.CodeInvalidArgument},
		{shell.ErrWrongGame, connect.CodeFailedPrecondition},
		{session.ErrClipPlayed, connect.CodeFailedPrecondition},
		{session.ErrClosed, connect.CodeAborted},
		{errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := connect.CodeOf(toConnectError(tt.err)); got != tt.want {
				t.Fatalf("code = %s, want %s", got, tt.want)
			}
		})
	}
}
