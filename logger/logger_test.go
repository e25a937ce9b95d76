package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWithWriter_ServiceField(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	SetupWithWriter("info", "portfolio-test", &buf)
	log.Debug().Msg("dropped")
	log.Info().Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if line["service"] != "portfolio-test" {
		t.Errorf("service = %v", line["service"])
	}
	if line["message"] != "kept" {
		t.Errorf("message = %v", line["message"])
	}
}

func TestValidLevel(t *testing.T) {
	if !ValidLevel("warn") || ValidLevel("trace") {
		t.Error("unexpected ValidLevel result")
	}
}
