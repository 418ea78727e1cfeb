// Package rpc exposes the player's shell and sessions as nota.v1.GameService.
package rpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/internal/session"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/shell"
)

var errMissingPlayer = errors.New(PlayerIDHeader + " header is required")

// Shells resolves a player's shell.
type Shells interface {
	Controller(playerID string) *shell.Controller
}

// Service implements GameServiceHandler on top of the players' shells.
type Service struct {
	shells Shells
}

func NewService(shells Shells) *Service {
	return &Service{shells: shells}
}

// Verify that Service implements the GameServiceHandler interface
var _ GameServiceHandler = (*Service)(nil)

func (s *Service) ListGames(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListGamesResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ListGamesResponse{Games: c.Games()}), nil
}

func (s *Service) SelectGame(ctx context.Context, req *connect.Request[SelectGameRequest]) (*connect.Response[StateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	if _, err := c.Select(ctx, req.Msg.Game); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&StateResponse{State: c.State()}), nil
}

func (s *Service) ExitGame(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	if err := c.Exit(); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&StateResponse{State: c.State()}), nil
}

// GetState returns the shell and active session with server-computed remaining time.
func (s *Service) GetState(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&StateResponse{State: c.State()}), nil
}

func (s *Service) RestartSession(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[StateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	if err := c.Restart(ctx); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&StateResponse{State: c.State()}), nil
}

func (s *Service) SubmitAnswer(ctx context.Context, req *connect.Request[SubmitAnswerRequest]) (*connect.Response[SubmitAnswerResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	q, err := c.Quiz()
	if err != nil {
		return nil, toConnectError(err)
	}
	result, err := q.Answer(req.Msg.Option)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SubmitAnswerResponse{Result: result}), nil
}

func (s *Service) NextQuestion(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[QuizStateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	q, err := c.Quiz()
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := q.Next()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&QuizStateResponse{Quiz: snap}), nil
}

func (s *Service) ClipReady(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	q, err := c.Quiz()
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := q.ClipReady(); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *Service) PlayClip(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	q, err := c.Quiz()
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := q.PlayClip(); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

// SubmitSong offers a title in the song-letter game. Rejected input is not an error.
func (s *Service) SubmitSong(ctx context.Context, req *connect.Request[SubmitSongRequest]) (*connect.Response[SubmitSongResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	sl, err := c.SongLetter()
	if err != nil {
		return nil, toConnectError(err)
	}
	accepted, err := sl.Submit(req.Msg.Text)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SubmitSongResponse{Accepted: accepted, SongLetter: sl.Snapshot()}), nil
}

func (s *Service) ListSongs(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListSongsResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	lobby, err := c.Karaoke()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListSongsResponse{Songs: lobby.Songs()}), nil
}

func (s *Service) ChooseSong(ctx context.Context, req *connect.Request[ChooseSongRequest]) (*connect.Response[KaraokeStateResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	lobby, err := c.Karaoke()
	if err != nil {
		return nil, toConnectError(err)
	}
	sing, err := lobby.Choose(req.Msg.SongID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&KaraokeStateResponse{Karaoke: sing.Snapshot()}), nil
}

func (s *Service) LeaveSong(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[LobbyResponse], error) {
	c, err := s.controller(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	lobby, err := c.Karaoke()
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := lobby.Leave(); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LobbyResponse{Lobby: lobby.Snapshot()}), nil
}

func (s *Service) MediaLoaded(ctx context.Context, req *connect.Request[MediaLoadedRequest]) (*connect.Response[KaraokeStateResponse], error) {
	return s.sing(req.Header().Get(PlayerIDHeader), func(k *karaoke.Session) error {
		return k.MediaLoaded(req.Msg.Duration)
	})
}

func (s *Service) MediaError(ctx context.Context, req *connect.Request[MediaErrorRequest]) (*connect.Response[KaraokeStateResponse], error) {
	return s.sing(req.Header().Get(PlayerIDHeader), func(k *karaoke.Session) error {
		return k.MediaError(req.Msg.Detail)
	})
}

func (s *Service) Play(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[KaraokeStateResponse], error) {
	return s.sing(req.Header().Get(PlayerIDHeader), (*karaoke.Session).Play)
}

func (s *Service) Pause(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[KaraokeStateResponse], error) {
	return s.sing(req.Header().Get(PlayerIDHeader), (*karaoke.Session).Pause)
}

func (s *Service) TimeUpdate(ctx context.Context, req *connect.Request[TimeUpdateRequest]) (*connect.Response[KaraokeStateResponse], error) {
	return s.sing(req.Header().Get(PlayerIDHeader), func(k *karaoke.Session) error {
		return k.TimeUpdate(req.Msg.Position)
	})
}

func (s *Service) Ended(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[EndedResponse], error) {
	k, err := s.activeSong(req.Header().Get(PlayerIDHeader))
	if err != nil {
		return nil, err
	}
	recording, err := k.Ended()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&EndedResponse{Recording: recording, Karaoke: k.Snapshot()}), nil
}

func (s *Service) controller(playerID string) (*shell.Controller, error) {
	if playerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingPlayer)
	}
	return s.shells.Controller(playerID), nil
}

func (s *Service) activeSong(playerID string) (*karaoke.Session, error) {
	c, err := s.controller(playerID)
	if err != nil {
		return nil, err
	}
	lobby, err := c.Karaoke()
	if err != nil {
		return nil, toConnectError(err)
	}
	k, err := lobby.Active()
	if err != nil {
		return nil, toConnectError(err)
	}
	return k, nil
}

// sing applies op to the player's active sing-along and returns its new state.
func (s *Service) sing(playerID string, op func(*karaoke.Session) error) (*connect.Response[KaraokeStateResponse], error) {
	k, err := s.activeSong(playerID)
	if err != nil {
		return nil, err
	}
	if err := op(k); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&KaraokeStateResponse{Karaoke: k.Snapshot()}), nil
}

// toConnectError maps shell and session errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, shell.ErrUnknownGame), errors.Is(err, session.ErrSongNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrUnknownOption):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, shell.ErrNoActiveSession),
		errors.Is(err, shell.ErrWrongGame),
		errors.Is(err, session.ErrNotPlaying),
		errors.Is(err, session.ErrNotAnswered),
		errors.Is(err, session.ErrNoClip),
		errors.Is(err, session.ErrClipNotReady),
		errors.Is(err, session.ErrClipPlayed),
		errors.Is(err, session.ErrNoSongChosen),
		errors.Is(err, session.ErrInvalidCommand):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrClosed):
		return connect.NewError(connect.CodeAborted, err)
	default:
		log.Error().Err(err).Msg("unexpected game service error")
		return connect.NewError(connect.CodeInternal, err)
	}
}
