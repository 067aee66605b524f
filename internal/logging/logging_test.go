package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		level    zapcore.Level
		encoding string
		wantErr  bool
	}{
		{"defaults", DefaultConfig(), zapcore.InfoLevel, "console", false},
		{"debug json", Config{Level: "DEBUG", Format: "json"}, zapcore.DebugLevel, "json", false},
		{"empty format", Config{Level: "warn"}, zapcore.WarnLevel, "console", false},
		{"bad level", Config{Level: "loud"}, 0, "", true},
		{"bad format", Config{Level: "info", Format: "xml"}, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zcfg, err := NewLoggerConfig(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if zcfg.Level.Level() != tt.level {
				t.Errorf("expected level %v, got %v", tt.level, zcfg.Level.Level())
			}
			if zcfg.Encoding != tt.encoding {
				t.Errorf("expected encoding %s, got %s", tt.encoding, zcfg.Encoding)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New("phrictl", Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"logger":"phrictl"`) {
		t.Errorf("unexpected log output %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry logged at info level")
	}
}
