package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != 8888 {
		t.Errorf("Expected default port 8888, got %d", cfg.Port)
	}
	if cfg.JPEGQuality != 95 {
		t.Errorf("Expected default quality 95, got %d", cfg.JPEGQuality)
	}
	if cfg.FFmpegPath != "ffmpeg" || cfg.FFprobePath != "ffprobe" {
		t.Errorf("Unexpected ffmpeg defaults: %s %s", cfg.FFmpegPath, cfg.FFprobePath)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FRAMECLASSIFIER_PORT", "3000")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("JPEG_QUALITY", "80")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", cfg.Port)
	}
	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("Expected ffmpeg path from env, got %s", cfg.FFmpegPath)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("Expected quality 80, got %d", cfg.JPEGQuality)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string][2]string{
		"non-numeric port": {"FRAMECLASSIFIER_PORT", "eighty"},
		"quality too high": {"JPEG_QUALITY", "101"},
		"quality zero":     {"JPEG_QUALITY", "0"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q): unexpected error state %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
