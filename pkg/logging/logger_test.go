package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Level = %s, want %s", cfg.Level, LevelInfo)
	}
	if cfg.Pretty {
		t.Error("Pretty = true, want false")
	}
}

// Each row emits the events hn-fetch logs at every level and lists which of
// them survive the configured threshold.
func TestSetup_LevelFiltering(t *testing.T) {
	events := []struct {
		level zerolog.Level
		msg   string
	}{
		{zerolog.DebugLevel, "Fetching level"},
		{zerolog.InfoLevel, "Fetched user items"},
		{zerolog.WarnLevel, "Level fetch failed"},
		{zerolog.ErrorLevel, "Fetch failed"},
	}

	tests := []struct {
		level LogLevel
		want  []string
	}{
		{LevelDebug, []string{"Fetching level", "Fetched user items", "Level fetch failed", "Fetch failed"}},
		{LevelInfo, []string{"Fetched user items", "Level fetch failed", "Fetch failed"}},
		{LevelWarn, []string{"Level fetch failed", "Fetch failed"}},
		{LevelError, []string{"Fetch failed"}},
		{LevelDisabled, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: tt.level, Output: buf})
			logger := NewLogger("expander")

			for _, ev := range events {
				logger.WithLevel(ev.level).Int("depth", 1).Msg(ev.msg)
			}

			output := buf.String()
			for _, ev := range events {
				want := false
				for _, w := range tt.want {
					if w == ev.msg {
						want = true
					}
				}
				if got := strings.Contains(output, ev.msg); got != want {
					t.Errorf("level %s: output contains %q = %v, want %v", tt.level, ev.msg, got, want)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LevelDisabled, zerolog.Disabled},
		{"WARNING", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestForCLI(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		verbose  bool
		expected LogLevel
	}{
		{"configured level", "warn", false, LevelWarn},
		{"verbose wins", "error", true, LevelDebug},
		{"empty level", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ForCLI(tt.level, true, tt.verbose)
			if cfg.Level != tt.expected {
				t.Errorf("Level = %q, want %q", cfg.Level, tt.expected)
			}
			if !cfg.Pretty {
				t.Error("Pretty should be carried over")
			}
			if cfg.Output == nil {
				t.Error("Output should default to stderr")
			}
		})
	}
}

func TestSetup_NilOutput(t *testing.T) {
	logger := Setup(Config{Level: LevelDisabled})
	logger.Error().Msg("discarded")

	if zerolog.GlobalLevel() != zerolog.Disabled {
		t.Errorf("GlobalLevel() = %v, want disabled", zerolog.GlobalLevel())
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	logger.Info().Str("url", "https://hacker-news.firebaseio.com/v0/item/8863.json").Msg("Fetched item")

	output := buf.String()
	if strings.HasPrefix(output, "{") {
		t.Errorf("Expected console output, got JSON %q", output)
	}
	if !strings.Contains(output, "Fetched item") || !strings.Contains(output, "8863.json") {
		t.Errorf("Expected message and url in output, got %q", output)
	}
}

func TestNewLogger(t *testing.T) {
	for _, component := range []string{"hn-client", "expander", "hn", "cli"} {
		t.Run(component, func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: LevelInfo, Output: buf})

			logger := NewLogger(component)
			logger.Info().Str("error_class", "timeout").Msg("Fetch failed")

			output := buf.String()
			if !strings.Contains(output, `"component":"`+component+`"`) {
				t.Errorf("Expected component %q in output, got %q", component, output)
			}
			if !strings.Contains(output, `"error_class":"timeout"`) {
				t.Errorf("Expected error_class field in output, got %q", output)
			}
		})
	}
}
