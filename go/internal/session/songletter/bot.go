package songletter

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mcdev12/nota/go/internal/models"
)

// Bots are the simulated opponents.
var Bots = []models.Bot{
	{ID: models.AuthorBot1, Name: "لحن"},
	{ID: models.AuthorBot2, Name: "نغم"},
	{ID: models.AuthorBot3, Name: "هارموني"},
}

// Alphabet is the 28-letter Arabic alphabet a game can start on.
var Alphabet = []rune("ابتثجحخدذرزسشصضطظعغفقكلمنهوي")

// BotMove is what a bot says on its turn. The chain continues from the last
// letter of Title.
type BotMove struct {
	Bot   models.Bot
	Title string
	Text  string
}

// BotStrategy picks the bot's reply to letter.
type BotStrategy interface {
	Reply(letter string, songs []models.BotSong) BotMove
}

// RandomStrategy answers as a random bot with the first listed song that fits.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	return NewRandomStrategyWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewRandomStrategyWithRand(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

func (s *RandomStrategy) Reply(letter string, songs []models.BotSong) BotMove {
	s.mu.Lock()
	bot := Bots[s.rng.Intn(len(Bots))]
	s.mu.Unlock()

	for _, song := range songs {
		if strings.HasPrefix(song.Title, letter) {
			return BotMove{Bot: bot, Title: song.Title, Text: fmt.Sprintf("%s - %s", song.Title, song.Artist)}
		}
	}
	concede := DontKnow(letter)
	return BotMove{Bot: bot, Title: concede, Text: concede}
}

// RandomLetter picks a starting letter.
func (s *RandomStrategy) RandomLetter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(Alphabet[s.rng.Intn(len(Alphabet))])
}

// DontKnow is the bot's concession text. It ends in a quote mark, which is not an
// Arabic letter, so it can never continue the chain.
func DontKnow(letter string) string {
	return fmt.Sprintf(`لا أعرف أغنية تبدأ بحرف "%s"`, letter)
}
