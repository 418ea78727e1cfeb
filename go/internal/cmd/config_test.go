package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := defaultConfig()
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Games.GuessSong.RoundDuration != 15*time.Second || cfg.Games.Pictures.RoundDuration != 20*time.Second {
		t.Fatalf("round durations = %v / %v", cfg.Games.GuessSong.RoundDuration, cfg.Games.Pictures.RoundDuration)
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
games:
  enabled: [guess-song, karaoke]
  guess_song:
    round_duration: 10s
    batch_size: 5
catalog:
  backend: file
database:
  name: nota_test
logging:
  level: debug
`)
	t.Setenv("PORT", "9100")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Fatalf("port = %s, env should win", cfg.Server.Port)
	}
	if diff := cmp.Diff([]string{"guess-song", "karaoke"}, cfg.Games.Enabled); diff != "" {
		t.Fatalf("enabled mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.guessSongConfig(); got.RoundDuration != 10*time.Second || got.ClipDuration != 8*time.Second {
		t.Fatalf("guess-song config = %+v", got)
	}
	if cfg.Games.GuessSong.BatchSize != 5 || cfg.Games.Pictures.BatchSize != 2 {
		t.Fatalf("batch sizes = %d / %d", cfg.Games.GuessSong.BatchSize, cfg.Games.Pictures.BatchSize)
	}
	if cfg.Database.Database != "nota_test" || cfg.Database.Host != "db.internal" || cfg.Database.Port != 5432 {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %s", cfg.Logging.Level)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown game":      "games:\n  enabled: [chess]\n",
		"unknown backend":   "catalog:\n  backend: redis\n",
		"http without url":  "catalog:\n  backend: http\n",
		"zero round":        "games:\n  musical_pictures:\n    round_duration: 0s\n",
		"malformed yaml":    "server: [\n",
		"negative bot wait": "games:\n  song_letter:\n    bot_delay: -1s\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, body)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
