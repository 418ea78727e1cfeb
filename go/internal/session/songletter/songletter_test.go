package songletter

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/events/eventstest"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session"
)

var botSongs = []models.BotSong{
	{Title: "تملي معاك", Artist: "Amr Diab"},
	{Title: "كل القصايد", Artist: "Marwan Khoury"},
	{Title: "كيفك انت", Artist: "Fairuz"},
	{Title: "نسم علينا الهوى", Artist: "Fairuz"},
	{Title: "وحشتيني", Artist: "Amr Diab"},
	{Title: "يا غايب", Artist: "Fadel Shaker"},
	{Title: "بحبك وحشتيني", Artist: "Hussein Al Jasmi"},
	{Title: "أنا لك على طول", Artist: "Abdel Halim Hafez"},
	{Title: "جانا الهوى", Artist: "Abdel Halim Hafez"},
	{Title: "زيديني عشقا", Artist: "Kadim Al Sahir"},
}

// fixedLetter starts every game on the same letter.
type fixedLetter struct {
	*RandomStrategy
	letter string
}

func (f fixedLetter) RandomLetter() string { return f.letter }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within 2s")
}

type harness struct {
	clock *clockwork.FakeClock
	rec   *eventstest.Recorder
	s     *Session
}

func newHarness(t *testing.T, songs []models.BotSong, letter string) *harness {
	t.Helper()
	h := &harness{clock: clockwork.NewFakeClock(), rec: &eventstest.Recorder{}}
	strategy := fixedLetter{RandomStrategy: NewRandomStrategyWithRand(rand.New(rand.NewSource(1))), letter: letter}
	load := func(context.Context) []models.BotSong { return songs }
	h.s = New(DefaultConfig(), load, strategy, h.clock, events.NewEmitter("sl-1", "p-1", h.clock, h.rec))
	t.Cleanup(h.s.Close)
	return h
}

func texts(msgs []models.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestSession_StartAnnouncesLetter(t *testing.T) {
	h := newHarness(t, botSongs, "ت")
	h.s.Start(context.Background())

	snap := h.s.Snapshot()
	if snap.Phase != PhasePlaying || snap.Letter != "ت" || snap.Remaining != 20 {
		t.Fatalf("snapshot = %+v", snap)
	}
	want := []models.ChatMessage{{ID: 1, Author: models.AuthorSystem, Text: `اللعبة تبدأ بحرف "ت"`}}
	if diff := cmp.Diff(want, snap.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_InvalidInputIsIgnored(t *testing.T) {
	h := newHarness(t, botSongs, "ت")
	h.s.Start(context.Background())
	before := h.s.Snapshot()

	for _, text := range []string{"", "كيفك انت", "تملي 1", "تملي!", "  ", "Tamally"} {
		accepted, err := h.s.Submit(text)
		if err != nil {
			t.Fatalf("Submit(%q): %v", text, err)
		}
		if accepted {
			t.Fatalf("Submit(%q) accepted", text)
		}
	}

	after := h.s.Snapshot()
	if diff := cmp.Diff(before.Messages, after.Messages); diff != "" {
		t.Fatalf("messages changed (-before +after):\n%s", diff)
	}
	if after.Score != 0 || after.Letter != "ت" {
		t.Fatalf("state changed: score=%d letter=%s", after.Score, after.Letter)
	}
}

func TestSession_ChainWithBotReply(t *testing.T) {
	h := newHarness(t, botSongs, "ت")
	h.s.Start(context.Background())

	accepted, err := h.s.Submit("  تملي معاك ")
	if err != nil || !accepted {
		t.Fatalf("Submit = %v, %v; want accepted", accepted, err)
	}
	snap := h.s.Snapshot()
	if snap.Phase != PhaseBotThinking || snap.Letter != "ك" || snap.Score != 100 {
		t.Fatalf("after submit = %s/%s/%d", snap.Phase, snap.Letter, snap.Score)
	}
	if last := snap.Messages[len(snap.Messages)-1]; last.Author != models.AuthorUser || last.AuthorName != UserDisplayName || last.Text != "تملي معاك" {
		t.Fatalf("user message = %+v", last)
	}

	// the bot is thinking: input is ignored
	if accepted, _ := h.s.Submit("كيفك انت"); accepted {
		t.Fatalf("input accepted while bot thinking")
	}

	h.clock.Advance(1500 * time.Millisecond)
	waitFor(t, func() bool { return h.s.Snapshot().Phase == PhasePlaying })

	snap = h.s.Snapshot()
	wantTexts := []string{
		`اللعبة تبدأ بحرف "ت"`,
		"تملي معاك",
		"كل القصايد - Marwan Khoury",
		`الآن حرف "د"`,
	}
	if diff := cmp.Diff(wantTexts, texts(snap.Messages)); diff != "" {
		t.Fatalf("chat mismatch (-want +got):\n%s", diff)
	}
	botMsg := snap.Messages[2]
	if botMsg.AuthorName == "" || (botMsg.Author != models.AuthorBot1 && botMsg.Author != models.AuthorBot2 && botMsg.Author != models.AuthorBot3) {
		t.Fatalf("bot message author = %+v", botMsg)
	}
	if snap.Letter != "د" || snap.Score != 100 || snap.Remaining != 20 {
		t.Fatalf("after bot = letter %s score %d remaining %d", snap.Letter, snap.Score, snap.Remaining)
	}
}

func TestSession_BotConcedesAndUserWins(t *testing.T) {
	h := newHarness(t, botSongs, "د")
	h.s.Start(context.Background())

	if accepted, err := h.s.Submit("دلعونا"); err != nil || !accepted {
		t.Fatalf("Submit = %v, %v", accepted, err)
	}

	h.clock.Advance(1500 * time.Millisecond)
	waitFor(t, func() bool { return len(h.s.Snapshot().Messages) == 3 })

	snap := h.s.Snapshot()
	if got := snap.Messages[2].Text; got != DontKnow("ا") {
		t.Fatalf("bot text = %q, want concession", got)
	}
	if snap.Phase != PhaseBotThinking {
		t.Fatalf("phase before concede delay = %s", snap.Phase)
	}

	h.clock.Advance(time.Second)
	waitFor(t, func() bool { return h.s.Snapshot().Phase == PhaseGameOver })

	snap = h.s.Snapshot()
	if snap.Winner != WinnerUser || snap.Score != 100 {
		t.Fatalf("winner=%s score=%d", snap.Winner, snap.Score)
	}
	if got := snap.Messages[len(snap.Messages)-1].Text; got != msgUserWon {
		t.Fatalf("final message = %q", got)
	}
	if _, err := h.s.Submit("انت"); !errors.Is(err, session.ErrNotPlaying) {
		t.Fatalf("Submit after game over err = %v, want ErrNotPlaying", err)
	}
}

func TestSession_TurnTimeoutEndsGame(t *testing.T) {
	h := newHarness(t, botSongs, "ت")
	h.s.Start(context.Background())

	h.clock.Advance(20 * time.Second)
	waitFor(t, func() bool { return h.s.Snapshot().Phase == PhaseGameOver })

	snap := h.s.Snapshot()
	if snap.Winner != WinnerBots || snap.Score != 0 {
		t.Fatalf("winner=%s score=%d", snap.Winner, snap.Score)
	}
	if got := snap.Messages[len(snap.Messages)-1].Text; got != msgTimeUp {
		t.Fatalf("final message = %q, want time-up", got)
	}

	finished := h.rec.OfType(events.EventTypeSessionFinished)
	if len(finished) != 1 {
		t.Fatalf("SessionFinished events = %d, want 1", len(finished))
	}
	var payload events.SessionFinishedPayload
	if err := finished[0].Decode(&payload); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload.Reason != "timeout" {
		t.Fatalf("reason = %q", payload.Reason)
	}
}

func TestSession_RestartDropsPendingBotMove(t *testing.T) {
	h := newHarness(t, botSongs, "ت")
	h.s.Start(context.Background())
	if accepted, _ := h.s.Submit("تملي معاك"); !accepted {
		t.Fatalf("Submit not accepted")
	}

	h.s.Restart(context.Background())
	h.clock.Advance(5 * time.Second)
	time.Sleep(20 * time.Millisecond)

	snap := h.s.Snapshot()
	if len(snap.Messages) != 1 || snap.Score != 0 || snap.Phase != PhasePlaying {
		t.Fatalf("after restart = %+v", snap)
	}
}

func TestSession_EmptySongListStaysLoading(t *testing.T) {
	h := newHarness(t, nil, "ت")
	h.s.Start(context.Background())

	if got := h.s.Snapshot().Phase; got != PhaseLoading {
		t.Fatalf("phase = %s, want loading", got)
	}
	if _, err := h.s.Submit("تملي معاك"); !errors.Is(err, session.ErrNotPlaying) {
		t.Fatalf("Submit while loading err = %v, want ErrNotPlaying", err)
	}
}

func TestLastArabicLetter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"تملي معاك", "ك", true},
		{"كل القصايد", "د", true},
		{"abc", "", false},
		{"تملي 1", "", false},
		{DontKnow("ب"), "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := lastArabicLetter(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("lastArabicLetter(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRandomStrategy(t *testing.T) {
	t.Parallel()

	s := NewRandomStrategyWithRand(rand.New(rand.NewSource(42)))

	move := s.Reply("و", botSongs)
	if move.Title != "وحشتيني" || move.Text != "وحشتيني - Amr Diab" {
		t.Fatalf("Reply(و) = %+v", move)
	}

	move = s.Reply("ه", botSongs)
	if move.Text != DontKnow("ه") {
		t.Fatalf("Reply(ه) = %+v, want concession", move)
	}

	if len(Alphabet) != 28 {
		t.Fatalf("alphabet has %d letters", len(Alphabet))
	}
	for i := 0; i < 50; i++ {
		letter := s.RandomLetter()
		if _, ok := lastArabicLetter(letter); !ok {
			t.Fatalf("RandomLetter returned %q", letter)
		}
	}
}
