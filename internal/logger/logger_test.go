package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(Config{Level: "info", Output: &buf}), "pipeline")
	log.Info().Int("documents", 3).Msg("run finished")
	log.Debug().Msg("filtered out")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "pipeline" || entry["service"] != "docintel" {
		t.Errorf("missing fields: %v", entry)
	}
	if entry["documents"] != float64(3) || entry["message"] != "run finished" {
		t.Errorf("unexpected entry: %v", entry)
	}
}
