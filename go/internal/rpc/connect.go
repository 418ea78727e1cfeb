package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// GameServiceName is the fully-qualified name of the game service.
const GameServiceName = "nota.v1.GameService"

// PlayerIDHeader carries the caller's player identity.
const PlayerIDHeader = "X-Player-ID"

const (
	ListGamesProcedure      = "/nota.v1.GameService/ListGames"
	SelectGameProcedure     = "/nota.v1.GameService/SelectGame"
	ExitGameProcedure       = "/nota.v1.GameService/ExitGame"
	GetStateProcedure       = "/nota.v1.GameService/GetState"
	RestartSessionProcedure = "/nota.v1.GameService/RestartSession"
	SubmitAnswerProcedure   = "/nota.v1.GameService/SubmitAnswer"
	NextQuestionProcedure   = "/nota.v1.GameService/NextQuestion"
	ClipReadyProcedure      = "/nota.v1.GameService/ClipReady"
	PlayClipProcedure       = "/nota.v1.GameService/PlayClip"
	SubmitSongProcedure     = "/nota.v1.GameService/SubmitSong"
	ListSongsProcedure      = "/nota.v1.GameService/ListSongs"
	ChooseSongProcedure     = "/nota.v1.GameService/ChooseSong"
	LeaveSongProcedure      = "/nota.v1.GameService/LeaveSong"
	MediaLoadedProcedure    = "/nota.v1.GameService/MediaLoaded"
	MediaErrorProcedure     = "/nota.v1.GameService/MediaError"
	PlayProcedure           = "/nota.v1.GameService/Play"
	PauseProcedure          = "/nota.v1.GameService/Pause"
	TimeUpdateProcedure     = "/nota.v1.GameService/TimeUpdate"
	EndedProcedure          = "/nota.v1.GameService/Ended"
)

// GameServiceHandler is the server side of nota.v1.GameService.
type GameServiceHandler interface {
	ListGames(context.Context, *connect.Request[Empty]) (*connect.Response[ListGamesResponse], error)
	SelectGame(context.Context, *connect.Request[SelectGameRequest]) (*connect.Response[StateResponse], error)
	ExitGame(context.Context, *connect.Request[Empty]) (*connect.Response[StateResponse], error)
	GetState(context.Context, *connect.Request[Empty]) (*connect.Response[StateResponse], error)
	RestartSession(context.Context, *connect.Request[Empty]) (*connect.Response[StateResponse], error)

	SubmitAnswer(context.Context, *connect.Request[SubmitAnswerRequest]) (*connect.Response[SubmitAnswerResponse], error)
	NextQuestion(context.Context, *connect.Request[Empty]) (*connect.Response[QuizStateResponse], error)
	ClipReady(context.Context, *connect.Request[Empty]) (*connect.Response[Empty], error)
	PlayClip(context.Context, *connect.Request[Empty]) (*connect.Response[Empty], error)

	SubmitSong(context.Context, *connect.Request[SubmitSongRequest]) (*connect.Response[SubmitSongResponse], error)

	ListSongs(context.Context, *connect.Request[Empty]) (*connect.Response[ListSongsResponse], error)
	ChooseSong(context.Context, *connect.Request[ChooseSongRequest]) (*connect.Response[KaraokeStateResponse], error)
	LeaveSong(context.Context, *connect.Request[Empty]) (*connect.Response[LobbyResponse], error)
	MediaLoaded(context.Context, *connect.Request[MediaLoadedRequest]) (*connect.Response[KaraokeStateResponse], error)
	MediaError(context.Context, *connect.Request[MediaErrorRequest]) (*connect.Response[KaraokeStateResponse], error)
	Play(context.Context, *connect.Request[Empty]) (*connect.Response[KaraokeStateResponse], error)
	Pause(context.Context, *connect.Request[Empty]) (*connect.Response[KaraokeStateResponse], error)
	TimeUpdate(context.Context, *connect.Request[TimeUpdateRequest]) (*connect.Response[KaraokeStateResponse], error)
	Ended(context.Context, *connect.Request[Empty]) (*connect.Response[EndedResponse], error)
}

// NewGameServiceHandler builds an HTTP handler serving every procedure of svc,
// and returns the path to mount it on.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListGamesProcedure, connect.NewUnaryHandler(ListGamesProcedure, svc.ListGames, opts...))
	mux.Handle(SelectGameProcedure, connect.NewUnaryHandler(SelectGameProcedure, svc.SelectGame, opts...))
	mux.Handle(ExitGameProcedure, connect.NewUnaryHandler(ExitGameProcedure, svc.ExitGame, opts...))
	mux.Handle(GetStateProcedure, connect.NewUnaryHandler(GetStateProcedure, svc.GetState, opts...))
	mux.Handle(RestartSessionProcedure, connect.NewUnaryHandler(RestartSessionProcedure, svc.RestartSession, opts...))
	mux.Handle(SubmitAnswerProcedure, connect.NewUnaryHandler(SubmitAnswerProcedure, svc.SubmitAnswer, opts...))
	mux.Handle(NextQuestionProcedure, connect.NewUnaryHandler(NextQuestionProcedure, svc.NextQuestion, opts...))
	mux.Handle(ClipReadyProcedure, connect.NewUnaryHandler(ClipReadyProcedure, svc.ClipReady, opts...))
	mux.Handle(PlayClipProcedure, connect.NewUnaryHandler(PlayClipProcedure, svc.PlayClip, opts...))
	mux.Handle(SubmitSongProcedure, connect.NewUnaryHandler(SubmitSongProcedure, svc.SubmitSong, opts...))
	mux.Handle(ListSongsProcedure, connect.NewUnaryHandler(ListSongsProcedure, svc.ListSongs, opts...))
	mux.Handle(ChooseSongProcedure, connect.NewUnaryHandler(ChooseSongProcedure, svc.ChooseSong, opts...))
	mux.Handle(LeaveSongProcedure, connect.NewUnaryHandler(LeaveSongProcedure, svc.LeaveSong, opts...))
	mux.Handle(MediaLoadedProcedure, connect.NewUnaryHandler(MediaLoadedProcedure, svc.MediaLoaded, opts...))
	mux.Handle(MediaErrorProcedure, connect.NewUnaryHandler(MediaErrorProcedure, svc.MediaError, opts...))
	mux.Handle(PlayProcedure, connect.NewUnaryHandler(PlayProcedure, svc.Play, opts...))
	mux.Handle(PauseProcedure, connect.NewUnaryHandler(PauseProcedure, svc.Pause, opts...))
	mux.Handle(TimeUpdateProcedure, connect.NewUnaryHandler(TimeUpdateProcedure, svc.TimeUpdate, opts...))
	mux.Handle(EndedProcedure, connect.NewUnaryHandler(EndedProcedure, svc.Ended, opts...))

	return "/" + GameServiceName + "/", mux
}

// GameServiceClient calls nota.v1.GameService as one player.
type GameServiceClient struct {
	playerID string

	listGames      *connect.Client[Empty, ListGamesResponse]
	selectGame     *connect.Client[SelectGameRequest, StateResponse]
	exitGame       *connect.Client[Empty, StateResponse]
	getState       *connect.Client[Empty, StateResponse]
	restartSession *connect.Client[Empty, StateResponse]
	submitAnswer   *connect.Client[SubmitAnswerRequest, SubmitAnswerResponse]
	nextQuestion   *connect.Client[Empty, QuizStateResponse]
	clipReady      *connect.Client[Empty, Empty]
	playClip       *connect.Client[Empty, Empty]
	submitSong     *connect.Client[SubmitSongRequest, SubmitSongResponse]
	listSongs      *connect.Client[Empty, ListSongsResponse]
	chooseSong     *connect.Client[ChooseSongRequest, KaraokeStateResponse]
	leaveSong      *connect.Client[Empty, LobbyResponse]
	mediaLoaded    *connect.Client[MediaLoadedRequest, KaraokeStateResponse]
	mediaError     *connect.Client[MediaErrorRequest, KaraokeStateResponse]
	play           *connect.Client[Empty, KaraokeStateResponse]
	pause          *connect.Client[Empty, KaraokeStateResponse]
	timeUpdate     *connect.Client[TimeUpdateRequest, KaraokeStateResponse]
	ended          *connect.Client[Empty, EndedResponse]
}

func NewGameServiceClient(httpClient connect.HTTPClient, baseURL, playerID string, opts ...connect.ClientOption) *GameServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &GameServiceClient{
		playerID:       playerID,
		listGames:      connect.NewClient[Empty, ListGamesResponse](httpClient, baseURL+ListGamesProcedure, opts...),
		selectGame:     connect.NewClient[SelectGameRequest, StateResponse](httpClient, baseURL+SelectGameProcedure, opts...),
		exitGame:       connect.NewClient[Empty, StateResponse](httpClient, baseURL+ExitGameProcedure, opts...),
		getState:       connect.NewClient[Empty, StateResponse](httpClient, baseURL+GetStateProcedure, opts...),
		restartSession: connect.NewClient[Empty, StateResponse](httpClient, baseURL+RestartSessionProcedure, opts...),
		submitAnswer:   connect.NewClient[SubmitAnswerRequest, SubmitAnswerResponse](httpClient, baseURL+SubmitAnswerProcedure, opts...),
		nextQuestion:   connect.NewClient[Empty, QuizStateResponse](httpClient, baseURL+NextQuestionProcedure, opts...),
		clipReady:      connect.NewClient[Empty, Empty](httpClient, baseURL+ClipReadyProcedure, opts...),
		playClip:       connect.NewClient[Empty, Empty](httpClient, baseURL+PlayClipProcedure, opts...),
		submitSong:     connect.NewClient[SubmitSongRequest, SubmitSongResponse](httpClient, baseURL+SubmitSongProcedure, opts...),
		listSongs:      connect.NewClient[Empty, ListSongsResponse](httpClient, baseURL+ListSongsProcedure, opts...),
		chooseSong:     connect.NewClient[ChooseSongRequest, KaraokeStateResponse](httpClient, baseURL+ChooseSongProcedure, opts...),
		leaveSong:      connect.NewClient[Empty, LobbyResponse](httpClient, baseURL+LeaveSongProcedure, opts...),
		mediaLoaded:    connect.NewClient[MediaLoadedRequest, KaraokeStateResponse](httpClient, baseURL+MediaLoadedProcedure, opts...),
		mediaError:     connect.NewClient[MediaErrorRequest, KaraokeStateResponse](httpClient, baseURL+MediaErrorProcedure, opts...),
		play:           connect.NewClient[Empty, KaraokeStateResponse](httpClient, baseURL+PlayProcedure, opts...),
		pause:          connect.NewClient[Empty, KaraokeStateResponse](httpClient, baseURL+PauseProcedure, opts...),
		timeUpdate:     connect.NewClient[TimeUpdateRequest, KaraokeStateResponse](httpClient, baseURL+TimeUpdateProcedure, opts...),
		ended:          connect.NewClient[Empty, EndedResponse](httpClient, baseURL+EndedProcedure, opts...),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], playerID string, msg *Req) (*Res, error) {
	req := connect.NewRequest(msg)
	req.Header().Set(PlayerIDHeader, playerID)
	resp, err := c.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *GameServiceClient) ListGames(ctx context.Context) (*ListGamesResponse, error) {
	return call(ctx, c.listGames, c.playerID, &Empty{})
}

func (c *GameServiceClient) SelectGame(ctx context.Context, req *SelectGameRequest) (*StateResponse, error) {
	return call(ctx, c.selectGame, c.playerID, req)
}

func (c *GameServiceClient) ExitGame(ctx context.Context) (*StateResponse, error) {
	return call(ctx, c.exitGame, c.playerID, &Empty{})
}

func (c *GameServiceClient) GetState(ctx context.Context) (*StateResponse, error) {
	return call(ctx, c.getState, c.playerID, &Empty{})
}

func (c *GameServiceClient) RestartSession(ctx context.Context) (*StateResponse, error) {
	return call(ctx, c.restartSession, c.playerID, &Empty{})
}

func (c *GameServiceClient) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	return call(ctx, c.submitAnswer, c.playerID, req)
}

func (c *GameServiceClient) NextQuestion(ctx context.Context) (*QuizStateResponse, error) {
	return call(ctx, c.nextQuestion, c.playerID, &Empty{})
}

func (c *GameServiceClient) ClipReady(ctx context.Context) error {
	_, err := call(ctx, c.clipReady, c.playerID, &Empty{})
	return err
}

func (c *GameServiceClient) PlayClip(ctx context.Context) error {
	_, err := call(ctx, c.playClip, c.playerID, &Empty{})
	return err
}

func (c *GameServiceClient) SubmitSong(ctx context.Context, req *SubmitSongRequest) (*SubmitSongResponse, error) {
	return call(ctx, c.submitSong, c.playerID, req)
}

func (c *GameServiceClient) ListSongs(ctx context.Context) (*ListSongsResponse, error) {
	return call(ctx, c.listSongs, c.playerID, &Empty{})
}

func (c *GameServiceClient) ChooseSong(ctx context.Context, req *ChooseSongRequest) (*KaraokeStateResponse, error) {
	return call(ctx, c.chooseSong, c.playerID, req)
}

func (c *GameServiceClient) LeaveSong(ctx context.Context) (*LobbyResponse, error) {
	return call(ctx, c.leaveSong, c.playerID, &Empty{})
}

func (c *GameServiceClient) MediaLoaded(ctx context.Context, req *MediaLoadedRequest) (*KaraokeStateResponse, error) {
	return call(ctx, c.mediaLoaded, c.playerID, req)
}

func (c *GameServiceClient) MediaError(ctx context.Context, req *MediaErrorRequest) (*KaraokeStateResponse, error) {
	return call(ctx, c.mediaError, c.playerID, req)
}

func (c *GameServiceClient) Play(ctx context.Context) (*KaraokeStateResponse, error) {
	return call(ctx, c.play, c.playerID, &Empty{})
}

func (c *GameServiceClient) Pause(ctx context.Context) (*KaraokeStateResponse, error) {
	return call(ctx, c.pause, c.playerID, &Empty{})
}

func (c *GameServiceClient) TimeUpdate(ctx context.Context, req *TimeUpdateRequest) (*KaraokeStateResponse, error) {
	return call(ctx, c.timeUpdate, c.playerID, req)
}

func (c *GameServiceClient) Ended(ctx context.Context) (*EndedResponse, error) {
	return call(ctx, c.ended, c.playerID, &Empty{})
}
