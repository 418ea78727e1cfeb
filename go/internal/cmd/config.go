package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/nota/go/internal/catalog"
	"github.com/mcdev12/nota/go/internal/dbconfig"
	"github.com/mcdev12/nota/go/internal/events"
	"github.com/mcdev12/nota/go/internal/games"
	"github.com/mcdev12/nota/go/internal/gateway"
	"github.com/mcdev12/nota/go/internal/session/quiz"
	"github.com/mcdev12/nota/go/internal/session/songletter"
	"github.com/mcdev12/nota/go/internal/shell"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Games      GamesConfig      `yaml:"games"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Database   dbconfig.Config  `yaml:"database"`
	NATS       NATSConfig       `yaml:"nats"`
	Recordings RecordingsConfig `yaml:"recordings"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"` // shells without calls or connections are closed after this
	EventBuffer     int           `yaml:"event_buffer"`
}

type GamesConfig struct {
	Enabled    []string         `yaml:"enabled"` // empty enables every game
	GuessSong  QuizGameConfig   `yaml:"guess_song"`
	Pictures   QuizGameConfig   `yaml:"musical_pictures"`
	SongLetter SongLetterConfig `yaml:"song_letter"`
}

type QuizGameConfig struct {
	RoundDuration time.Duration `yaml:"round_duration"`
	ClipDuration  time.Duration `yaml:"clip_duration"`
	BatchSize     int           `yaml:"batch_size"`
}

type SongLetterConfig struct {
	TurnDuration  time.Duration `yaml:"turn_duration"`
	BotDelay      time.Duration `yaml:"bot_delay"`
	ConcedeDelay  time.Duration `yaml:"concede_delay"`
	PointsPerSong int           `yaml:"points_per_song"`
}

type CatalogConfig struct {
	Backend string `yaml:"backend"` // file | postgres | http
	File    string `yaml:"file"`    // empty uses the embedded catalog
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type RecordingsConfig struct {
	MaxBytes int64         `yaml:"max_bytes"`
	TTL      time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

func defaultConfig() Config {
	guess := quiz.GuessSongConfig()
	pictures := quiz.PicturesConfig()
	sl := songletter.DefaultConfig()
	js := events.DefaultJetStreamConfig()
	rec := gateway.DefaultRecordingsConfig()

	return Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
			IdleTimeout:     shell.DefaultIdleTimeout,
			EventBuffer:     1024,
		},
		Games: GamesConfig{
			GuessSong: QuizGameConfig{
				RoundDuration: guess.RoundDuration,
				ClipDuration:  guess.ClipDuration,
				BatchSize:     catalog.DefaultGuessSongBatch,
			},
			Pictures: QuizGameConfig{
				RoundDuration: pictures.RoundDuration,
				BatchSize:     catalog.DefaultPicturesBatch,
			},
			SongLetter: SongLetterConfig{
				TurnDuration:  sl.TurnDuration,
				BotDelay:      sl.BotDelay,
				ConcedeDelay:  sl.ConcedeDelay,
				PointsPerSong: sl.PointsPerSong,
			},
		},
		Catalog:  CatalogConfig{Backend: string(catalog.BackendFile)},
		Database: dbconfig.Defaults(),
		NATS: NATSConfig{
			URL:           js.URL,
			Stream:        js.StreamName,
			SubjectPrefix: js.SubjectPrefix,
		},
		Recordings: RecordingsConfig{MaxBytes: rec.MaxBytes, TTL: rec.TTL},
		Logging:    LoggingConfig{Level: "info", Console: true},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadConfig reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnvAsList("ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Games.Enabled = getEnvAsList("NOTA_GAMES", c.Games.Enabled)
	c.Catalog.Backend = getEnv("CATALOG_BACKEND", c.Catalog.Backend)
	c.Catalog.File = getEnv("CATALOG_FILE", c.Catalog.File)
	c.Catalog.BaseURL = getEnv("CATALOG_URL", c.Catalog.BaseURL)
	c.Catalog.APIKey = getEnv("CATALOG_API_KEY", c.Catalog.APIKey)
	c.Database = c.Database.WithEnv()
	c.NATS.Enabled = getEnvAsBool("NATS_ENABLED", c.NATS.Enabled)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

func (c *Config) validate() error {
	if _, err := games.Enabled(c.Games.Enabled); err != nil {
		return err
	}
	backend, err := catalog.ParseBackend(c.Catalog.Backend)
	if err != nil {
		return err
	}
	if backend == catalog.BackendHTTP && c.Catalog.BaseURL == "" {
		return errors.New("catalog.base_url is required for the http backend")
	}

	durations := map[string]time.Duration{
		"games.guess_song.round_duration":       c.Games.GuessSong.RoundDuration,
		"games.guess_song.clip_duration":        c.Games.GuessSong.ClipDuration,
		"games.musical_pictures.round_duration": c.Games.Pictures.RoundDuration,
		"games.song_letter.turn_duration":       c.Games.SongLetter.TurnDuration,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Server.IdleTimeout < 0 {
		return errors.New("server.idle_timeout must not be negative")
	}
	if c.Games.SongLetter.BotDelay < 0 || c.Games.SongLetter.ConcedeDelay < 0 {
		return errors.New("song_letter delays must not be negative")
	}
	return nil
}

func (c *Config) guessSongConfig() quiz.Config {
	cfg := quiz.GuessSongConfig()
	cfg.RoundDuration = c.Games.GuessSong.RoundDuration
	cfg.ClipDuration = c.Games.GuessSong.ClipDuration
	return cfg
}

func (c *Config) picturesConfig() quiz.Config {
	cfg := quiz.PicturesConfig()
	cfg.RoundDuration = c.Games.Pictures.RoundDuration
	return cfg
}

func (c *Config) songLetterConfig() songletter.Config {
	return songletter.Config{
		TurnDuration:  c.Games.SongLetter.TurnDuration,
		BotDelay:      c.Games.SongLetter.BotDelay,
		ConcedeDelay:  c.Games.SongLetter.ConcedeDelay,
		PointsPerSong: c.Games.SongLetter.PointsPerSong,
	}
}

func (c *Config) jetStreamConfig() events.JetStreamConfig {
	cfg := events.DefaultJetStreamConfig()
	cfg.URL = c.NATS.URL
	cfg.StreamName = c.NATS.Stream
	cfg.SubjectPrefix = c.NATS.SubjectPrefix
	return cfg
}
