package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fernicar/echoserve/pkg/echo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.MinWords != 2 || cfg.Engine.MaxWords != 8 {
		t.Errorf("engine bounds = %d..%d, want 2..8", cfg.Engine.MinWords, cfg.Engine.MaxWords)
	}
	if !echo.ValidPreset(cfg.Server.DefaultSortPreset) {
		t.Errorf("default preset %q is not a valid preset", cfg.Server.DefaultSortPreset)
	}
	if cfg.Live.DebounceMs != 250 {
		t.Errorf("debounce = %dms, want 250", cfg.Live.DebounceMs)
	}
}

func TestClamp(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{MinWords: 0, MaxWords: -3, MaxTextLen: 0},
		Server: ServerConfig{DefaultSortPreset: "wat"},
		Live:   LiveConfig{DebounceMs: -1},
		CLI:    CliConfig{DefaultLimit: 0},
	}
	cfg.Clamp()

	defaults := DefaultConfig()
	if cfg.Engine.MinWords != defaults.Engine.MinWords {
		t.Errorf("min_words = %d", cfg.Engine.MinWords)
	}
	if cfg.Engine.MaxWords < cfg.Engine.MinWords {
		t.Errorf("max_words %d still below min_words %d", cfg.Engine.MaxWords, cfg.Engine.MinWords)
	}
	if cfg.Server.DefaultSortPreset != defaults.Server.DefaultSortPreset {
		t.Errorf("preset = %q", cfg.Server.DefaultSortPreset)
	}
	if cfg.Live.DebounceMs != defaults.Live.DebounceMs {
		t.Errorf("debounce = %d", cfg.Live.DebounceMs)
	}
	if cfg.CLI.DefaultLimit != defaults.CLI.DefaultLimit {
		t.Errorf("limit = %d", cfg.CLI.DefaultLimit)
	}
}

func TestClampKeepsValidValues(t *testing.T) {
	cfg := &Config{
		Engine: EngineConfig{MinWords: 3, MaxWords: 5, MaxTextLen: 1000},
		Server: ServerConfig{DefaultSortPreset: string(echo.LongestFirst)},
		Live:   LiveConfig{DebounceMs: 100},
		CLI:    CliConfig{DefaultLimit: 10},
	}
	cfg.Clamp()
	if cfg.Engine.MinWords != 3 || cfg.Engine.MaxWords != 5 {
		t.Errorf("valid bounds were clamped: %d..%d", cfg.Engine.MinWords, cfg.Engine.MaxWords)
	}
	if cfg.Server.DefaultSortPreset != string(echo.LongestFirst) {
		t.Errorf("valid preset was clamped: %q", cfg.Server.DefaultSortPreset)
	}
	if cfg.Live.DebounceMs != 100 {
		t.Errorf("valid debounce was clamped: %d", cfg.Live.DebounceMs)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoserve.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if cfg.Engine.MinWords != 2 {
		t.Errorf("fresh config min_words = %d", cfg.Engine.MinWords)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}

	// Second init reads the file it just wrote.
	again, err := InitConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again != *cfg {
		t.Errorf("round trip changed the config: %+v vs %+v", again, cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoserve.toml")
	content := `
[engine]
min_words = 3
max_words = 6

[server]
default_sort_preset = "longest_first_by_word_count"
include_occurrences = false

[live]
debounce_ms = 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.MinWords != 3 || cfg.Engine.MaxWords != 6 {
		t.Errorf("bounds = %d..%d, want 3..6", cfg.Engine.MinWords, cfg.Engine.MaxWords)
	}
	if cfg.Server.DefaultSortPreset != string(echo.LongestFirst) {
		t.Errorf("preset = %q", cfg.Server.DefaultSortPreset)
	}
	if cfg.Server.IncludeOccurrences {
		t.Error("include_occurrences override ignored")
	}
	if cfg.Live.DebounceMs != 500 {
		t.Errorf("debounce = %d, want 500", cfg.Live.DebounceMs)
	}
	// Sections absent from the file keep their defaults.
	if cfg.CLI.DefaultLimit != DefaultConfig().CLI.DefaultLimit {
		t.Errorf("cli limit = %d", cfg.CLI.DefaultLimit)
	}
}

func TestLoadConfigClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echoserve.toml")
	content := `
[engine]
min_words = 1
max_words = 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.MinWords < 2 {
		t.Errorf("min_words %d not clamped", cfg.Engine.MinWords)
	}
	if cfg.Engine.MaxWords < cfg.Engine.MinWords {
		t.Errorf("max_words %d below min_words %d", cfg.Engine.MaxWords, cfg.Engine.MinWords)
	}
}
