package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds settings read from the environment (and a .env file, if present).
type Config struct {
	Port        int    `env:"FRAMECLASSIFIER_PORT" envDefault:"8888"`
	WorkDir     string `env:"WORK_DIR"             envDefault:"work"`
	FFmpegPath  string `env:"FFMPEG_PATH"          envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH"         envDefault:"ffprobe"`
	JPEGQuality int    `env:"JPEG_QUALITY"         envDefault:"95"`
	LogLevel    string `env:"LOG_LEVEL"            envDefault:"info"`
}

// Load decodes the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", cfg.JPEGQuality)
	}
	return cfg, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// SetupLogging installs the default text logger on stderr at the given level.
func SetupLogging(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
