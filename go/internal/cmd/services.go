package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/nota/go/clients"
	"github.com/mcdev12/nota/go/internal/catalog"
	catalogpg "github.com/mcdev12/nota/go/internal/catalog/postgres"
	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/gateway"
	"github.com/mcdev12/nota/go/internal/models"
	"github.com/mcdev12/nota/go/internal/rpc"
	"github.com/mcdev12/nota/go/internal/session/karaoke"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/session/songletter"
	"github.com/mcdev12/nota/go/internal/shell"
)

type Services struct {
	Game        *rpc.Service
	Gateway     *gateway.Handler
	Connections *gateway.ConnectionManager
	Dispatcher  *events.Dispatcher
	Hub         *shell.Hub
	Feed        *events.JetStreamPublisher // nil unless NATS is enabled

	db       *sql.DB
	listener *catalogpg.Listener
}

func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Catalog store → Source → session factories → Shell hub → RPC service
	svc := &Services{}
	clock := clockwork.NewRealClock()

	store, err := svc.setupCatalogStore(ctx, cfg)
	if err != nil {
		svc.Close()
		return nil, err
	}
	source := catalog.NewSource(store,
		catalog.WithBatchSizes(cfg.Games.GuessSong.BatchSize, cfg.Games.Pictures.BatchSize))

	// Event sinks: the player's websocket connections, and optionally the results feed
	svc.Connections = gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	sinks := []events.Publisher{svc.Connections}
	if cfg.NATS.Enabled {
		feed, err := events.NewJetStreamPublisher(ctx, cfg.jetStreamConfig())
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to set up results feed: %w", err)
		}
		svc.Feed = feed
		sinks = append(sinks, events.Filter(feed, events.FeedEvents))
	}
	svc.Dispatcher = events.NewDispatcher(cfg.Server.EventBuffer, sinks...)

	recordings := gateway.NewRecordingStore(gateway.RecordingsConfig{
		MaxBytes: cfg.Recordings.MaxBytes,
		TTL:      cfg.Recordings.TTL,
	}, clock)
	strategy := songletter.NewRandomStrategy()

	factories := map[models.GameID]shell.Factory{
		models.GameGuessSong: func(emit *events.Emitter) shell.Session {
			return quiz.New(cfg.guessSongConfig(), source.GuessSongBatch, gateway.NewRemoteClip(emit), clock, emit)
		},
		models.GameMusicalPictures: func(emit *events.Emitter) shell.Session {
			return quiz.New(cfg.picturesConfig(), source.PicturesBatch, nil, clock, emit)
		},
		models.GameSongLetter: func(emit *events.Emitter) shell.Session {
			return songletter.New(cfg.songLetterConfig(), source.BotSongList, strategy, clock, emit)
		},
		models.GameKaraoke: func(emit *events.Emitter) shell.Session {
			return karaoke.NewLobby(source.KaraokeSongs, gateway.NewRemoteDevice(emit, recordings).Ports(), emit)
		},
	}

	enabled, err := games.Enabled(cfg.Games.Enabled)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Hub = shell.NewHub(enabled, factories, clock, svc.Dispatcher,
		shell.WithIdleTimeout(cfg.Server.IdleTimeout),
		shell.WithPresence(svc.Connections.Connected))
	svc.Connections.OnDisconnect(svc.Hub.Touch)
	svc.Game = rpc.NewService(svc.Hub)
	svc.Gateway = gateway.NewHandler(svc.Connections, recordings)

	names := make([]string, 0, len(enabled.List()))
	for _, g := range enabled.List() {
		names = append(names, string(g.ID))
	}
	log.Info().
		Strs("games", names).
		Str("catalog", cfg.Catalog.Backend).
		Bool("feed", svc.Feed != nil).
		Msg("services ready")

	return svc, nil
}

func (s *Services) setupCatalogStore(ctx context.Context, cfg *Config) (catalog.Store, error) {
	backend, err := catalog.ParseBackend(cfg.Catalog.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case catalog.BackendPostgres:
		db, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
		cache := catalog.NewCache(catalogpg.NewRepository(catalogpg.New(db)))

		listenerCfg := catalogpg.DefaultListenerConfig()
		listenerCfg.DatabaseURL = cfg.Database.DSN()
		listener, err := catalogpg.NewListener(cache, listenerCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up catalog listener: %w", err)
		}
		s.listener = listener
		return cache, nil

	case catalog.BackendHTTP:
		return catalog.NewCache(clients.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey)), nil

	default:
		store, err := catalog.LoadFileStore(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		content := store.Content()
		log.Info().
			Int("guess_song", len(content.GuessSong)).
			Int("musical_pictures", len(content.MusicalPictures)).
			Int("karaoke", len(content.Karaoke)).
			Int("bot_songs", len(content.BotSongs)).
			Msg("catalog loaded")
		return store, nil
	}
}

// Run starts the background workers. It returns when ctx is done.
func (s *Services) Run(ctx context.Context) {
	go s.Connections.Start(ctx)
	go s.Dispatcher.Run(ctx)
	go s.Hub.Run(ctx)
	if s.listener != nil {
		go func() {
			if err := s.listener.Start(ctx); err != nil {
				log.Error().Err(err).Msg("catalog listener stopped")
			}
		}()
	}
	<-ctx.Done()
}

// Healthy reports whether the optional dependencies are reachable.
func (s *Services) Healthy() bool {
	return s.Feed == nil || s.Feed.Healthy()
}

func (s *Services) Close() {
	if s.Hub != nil {
		s.Hub.Close()
	}
	if s.Feed != nil {
		if err := s.Feed.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to drain results feed")
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}
