package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/nota/go/internal/models"
)

const (
	guessSongEndpoint = "/questions/guess-song"
	picturesEndpoint  = "/questions/musical-pictures"
	karaokeEndpoint   = "/karaoke/songs"
	botSongsEndpoint  = "/song-letter/bot-songs"
)

// CatalogClient reads game content from a JSON content service.
type CatalogClient struct {
	*BaseClient
}

func NewCatalogClient(baseURL, apiKey string) *CatalogClient {
	client := &CatalogClient{
		BaseClient: NewBaseClient(baseURL),
	}
	client.SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return client
}

type listResponse[T any] struct {
	Results  int `json:"results"`
	Response []T `json:"response"`
}

func getList[T any](ctx context.Context, c *CatalogClient, endpoint string) ([]T, error) {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", endpoint, err)
	}

	var response listResponse[T]
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return response.Response, nil
}

func (c *CatalogClient) GuessSongQuestions(ctx context.Context) ([]models.Question, error) {
	return getList[models.Question](ctx, c, guessSongEndpoint)
}

func (c *CatalogClient) PictureQuestions(ctx context.Context) ([]models.Question, error) {
	return getList[models.Question](ctx, c, picturesEndpoint)
}

func (c *CatalogClient) KaraokeSongs(ctx context.Context) ([]models.Song, error) {
	return getList[models.Song](ctx, c, karaokeEndpoint)
}

func (c *CatalogClient) BotSongs(ctx context.Context) ([]models.BotSong, error) {
	return getList[models.BotSong](ctx, c, botSongsEndpoint)
}
