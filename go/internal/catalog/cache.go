package catalog

import (
	"context"
	"sync"

	"github.com/mcdev12/nota/go/internal/models"
)

// Cache memoizes a slow Store until Invalidate is called. Errors and empty
// lists are not cached, so a backend that recovers is read again.
type Cache struct {
	store Store

	mu        sync.RWMutex
	gen       uint64
	guessSong []models.Question
	pictures  []models.Question
	karaoke   []models.Song
	botSongs  []models.BotSong
}

func NewCache(store Store) *Cache {
	return &Cache{store: store}
}

// Invalidate drops every cached list.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.guessSong = nil
	c.pictures = nil
	c.karaoke = nil
	c.botSongs = nil
}

func cached[T any](c *Cache, slot *[]T, load func(context.Context) ([]T, error), ctx context.Context) ([]T, error) {
	c.mu.RLock()
	if v := *slot; v != nil {
		c.mu.RUnlock()
		return v, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return v, nil
	}

	c.mu.Lock()
	if c.gen == gen {
		*slot = v
	}
	c.mu.Unlock()
	return v, nil
}

func (c *Cache) GuessSongQuestions(ctx context.Context) ([]models.Question, error) {
	return cached(c, &c.guessSong, c.store.GuessSongQuestions, ctx)
}

func (c *Cache) PictureQuestions(ctx context.Context) ([]models.Question, error) {
	return cached(c, &c.pictures, c.store.PictureQuestions, ctx)
}

func (c *Cache) KaraokeSongs(ctx context.Context) ([]models.Song, error) {
	return cached(c, &c.karaoke, c.store.KaraokeSongs, ctx)
}

func (c *Cache) BotSongs(ctx context.Context) ([]models.BotSong, error) {
	return cached(c, &c.botSongs, c.store.BotSongs, ctx)
}
