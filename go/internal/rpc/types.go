package rpc

import (
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/session/songletter"
	"github.com/mcdev12/nota/go/internal/shell"
)

type Empty struct{}

type ListGamesResponse struct {
	Games []games.Game `json:"games"`
}

type SelectGameRequest struct {
	Game models.GameID `json:"game"`
}

type StateResponse struct {
	State shell.State `json:"state"`
}

type SubmitAnswerRequest struct {
	Option string `json:"option"`
}

type SubmitAnswerResponse struct {
	Result quiz.Result `json:"result"`
}

type QuizStateResponse struct {
	Quiz quiz.Snapshot `json:"quiz"`
}

type SubmitSongRequest struct {
	Text string `json:"text"`
}

type SubmitSongResponse struct {
	Accepted   bool                `json:"accepted"`
	SongLetter songletter.Snapshot `json:"song_letter"`
}

type ListSongsResponse struct {
	Songs []models.Song `json:"songs"`
}

type ChooseSongRequest struct {
	SongID string `json:"song_id"`
}

type LobbyResponse struct {
	Lobby karaoke.LobbySnapshot `json:"lobby"`
}

type KaraokeStateResponse struct {
	Karaoke karaoke.Snapshot `json:"karaoke"`
}

type MediaLoadedRequest struct {
	Duration float64 `json:"duration"`
}

type MediaErrorRequest struct {
	Detail string `json:"detail"`
}

type TimeUpdateRequest struct {
	Position float64 `json:"position"`
}

type EndedResponse struct {
	Recording *karaoke.Recording `json:"recording,omitempty"`
	Karaoke   karaoke.Snapshot   `json:"karaoke"`
}
