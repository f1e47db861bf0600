package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	} {
		if got := ParseLevel(test.in); got != test.expected {
			t.Errorf("level %q: expected %s, got %s", test.in, test.expected, got)
		}
	}
}

func TestBuild(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	log := Build(Config{Level: "warn", Component: "cli"}, &buf)
	log.Info().Msg("hidden")
	log.Warn().Int("faults", 2).Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatal(err)
	}
	if event["message"] != "shown" || event["component"] != "cli" || event["faults"] != 2. {
		t.Errorf("unexpected event %v", event)
	}
	if _, has := event["time"]; !has {
		t.Error("missing timestamp")
	}

	buf.Reset()
	log = Build(Config{Level: "debug", Console: true}, &buf)
	log.Debug().Str("layer", "roads").Msg("console")
	if s := buf.String(); !strings.Contains(s, "console") || !strings.Contains(s, "layer=roads") {
		t.Errorf("unexpected console output %q", s)
	}
}
