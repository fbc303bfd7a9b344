package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zerolog.Level
		wantErr bool
	}{
		{name: "debug", want: zerolog.DebugLevel},
		{name: "INFO", want: zerolog.InfoLevel},
		{name: "warning", want: zerolog.WarnLevel},
		{name: "error", want: zerolog.ErrorLevel},
		{name: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.DebugLevel)

	logger.Info("built",
		interfaces.F("target", entities.Target{OS: "linux", Arch: "arm"}),
		interfaces.F("archive", "releases/tool-linux-arm-1.0.tar.gz"),
		interfaces.F("count", 3),
	)

	var evt map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	if evt["message"] != "built" {
		t.Errorf("message = %v, want built", evt["message"])
	}
	if evt["target"] != "linux/arm" {
		t.Errorf("target = %v, want linux/arm", evt["target"])
	}
	if evt["count"] != float64(3) {
		t.Errorf("count = %v, want 3", evt["count"])
	}
	if evt["level"] != "info" {
		t.Errorf("level = %v, want info", evt["level"])
	}
}

func TestLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.InfoLevel)

	logger.Error("compile failed", interfaces.F("error", errors.New("exit status 2")))

	if !strings.Contains(buf.String(), "exit status 2") {
		t.Errorf("error field missing from %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug/info should be filtered at warn level, got %s", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, zerolog.InfoLevel).With(interfaces.F("target", "tool-darwin-386"))

	logger.Info("Building release")

	var evt map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if evt["target"] != "tool-darwin-386" {
		t.Errorf("target = %v, want tool-darwin-386", evt["target"])
	}
}
