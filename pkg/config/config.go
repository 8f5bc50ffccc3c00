/*
Package config manages TOML config for echoserve services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/fernicar/echoserve/internal/utils"
	"github.com/fernicar/echoserve/pkg/echo"
)

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Server ServerConfig `toml:"server"`
	Live   LiveConfig   `toml:"live"`
	CLI    CliConfig    `toml:"cli"`
}

// EngineConfig has analysis pipeline defaults.
type EngineConfig struct {
	MinWords   int `toml:"min_words"`
	MaxWords   int `toml:"max_words"`
	MaxTextLen int `toml:"max_text_len"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	DefaultSortPreset  string `toml:"default_sort_preset"`
	IncludeOccurrences bool   `toml:"include_occurrences"`
}

// LiveConfig holds live recount options.
type LiveConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowSpans    bool `toml:"show_spans"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "echoserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "echoserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/echoserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			MinWords:   2,
			MaxWords:   8,
			MaxTextLen: 4_000_000,
		},
		Server: ServerConfig{
			DefaultSortPreset:  string(echo.MostRepeated),
			IncludeOccurrences: true,
		},
		Live: LiveConfig{
			DebounceMs: 250,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			ShowSpans:    false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Out-of-range values are clamped back to
// defaults with a warning, never fatal.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Clamp()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if liveSection, ok := utils.ExtractSection(tempConfig, "live"); ok {
		extractLiveConfig(liveSection, &config.Live)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	config.Clamp()
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "min_words"); ok {
		engine.MinWords = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		engine.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text_len"); ok {
		engine.MaxTextLen = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "default_sort_preset"); ok {
		server.DefaultSortPreset = val
	}
	if val, ok := utils.ExtractBool(data, "include_occurrences"); ok {
		server.IncludeOccurrences = val
	}
}

// extractLiveConfig extracts live recount configuration from a map
func extractLiveConfig(data map[string]any, live *LiveConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		live.DebounceMs = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "show_spans"); ok {
		cli.ShowSpans = val
	}
}

// Clamp pulls out-of-range values back to the defaults.
func (c *Config) Clamp() {
	defaults := DefaultConfig()
	if c.Engine.MinWords < 2 {
		log.Warnf("min_words %d is below 2, using %d", c.Engine.MinWords, defaults.Engine.MinWords)
		c.Engine.MinWords = defaults.Engine.MinWords
	}
	if c.Engine.MaxWords < c.Engine.MinWords {
		log.Warnf("max_words %d is below min_words %d, using %d", c.Engine.MaxWords, c.Engine.MinWords, defaults.Engine.MaxWords)
		c.Engine.MaxWords = defaults.Engine.MaxWords
		if c.Engine.MaxWords < c.Engine.MinWords {
			c.Engine.MaxWords = c.Engine.MinWords
		}
	}
	if c.Engine.MaxTextLen <= 0 {
		c.Engine.MaxTextLen = defaults.Engine.MaxTextLen
	}
	if !echo.ValidPreset(c.Server.DefaultSortPreset) {
		log.Warnf("unknown sort preset %q, using %q", c.Server.DefaultSortPreset, defaults.Server.DefaultSortPreset)
		c.Server.DefaultSortPreset = defaults.Server.DefaultSortPreset
	}
	if c.Live.DebounceMs <= 0 {
		c.Live.DebounceMs = defaults.Live.DebounceMs
	}
	if c.CLI.DefaultLimit < 1 {
		c.CLI.DefaultLimit = defaults.CLI.DefaultLimit
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
