package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/safety-dashboard/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"empty defaults to info", "", zapcore.InfoLevel, false},
		{"debug", "debug", zapcore.DebugLevel, false},
		{"warning alias", "warning", zapcore.WarnLevel, false},
		{"error", "error", zapcore.ErrorLevel, false},
		{"unknown", "trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewLevelOverride(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "error", Format: "console"}, "debug")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("override should enable debug logging")
	}
}

func TestNewDefaults(t *testing.T) {
	logger, err := New(config.LoggingConfig{}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled by default")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled by default")
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(config.LoggingConfig{Format: "text"}, ""); err == nil {
		t.Error("expected error for invalid format")
	}
	if _, err := New(config.LoggingConfig{}, "verbose"); err == nil {
		t.Error("expected error for invalid level override")
	}
}

func TestNewOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dashboard.log")

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("dataset loaded", zap.String("op", "test"), zap.Int("records", 5))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"dataset loaded"`) {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"records":5`) {
		t.Errorf("log file missing field: %s", data)
	}
}
