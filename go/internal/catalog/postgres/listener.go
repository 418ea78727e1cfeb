package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// NotifyChannel is the channel the catalog triggers notify on.
const NotifyChannel = "nota_catalog_changed"

type ListenerConfig struct {
	DatabaseURL   string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel string        // Channel name to LISTEN on
	PingInterval  time.Duration // keepalive for the listener connection
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel: NotifyChannel,
		PingInterval:  90 * time.Second,
	}
}

// Invalidator drops cached catalog content.
type Invalidator interface {
	Invalidate()
}

// Listener invalidates the catalog cache whenever a catalog table changes.
type Listener struct {
	listener *pq.Listener
	cache    Invalidator
	cfg      ListenerConfig
}

func NewListener(cache Invalidator, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("catalog listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for catalog changes")

	return &Listener{
		listener: l,
		cache:    cache,
		cfg:      cfg,
	}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	pingTicker := time.NewTicker(l.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("catalog listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			// nil means the connection was re-established; changes may have been missed
			table := "reconnect"
			if note != nil {
				table = note.Extra
			}
			l.cache.Invalidate()
			log.Info().Str("table", table).Msg("catalog cache invalidated")
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping catalog listener")
			}
		}
	}
}

func (l *Listener) Stop() error {
	return l.listener.Close()
}
