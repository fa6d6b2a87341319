package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// Storage formats accepted by the storage_format key.
const (
	FormatLines = "lines"
	FormatJSON  = "json"
)

// Config holds application configuration.
type Config struct {
	BookmarksFile       string        `yaml:"bookmarks_file"`
	LegacyBookmarksFile string        `yaml:"legacy_bookmarks_file"`
	SettingsDB          string        `yaml:"settings_db"`
	StorageFormat       string        `yaml:"storage_format"`
	WatchRateLimit      time.Duration `yaml:"watch_rate_limit"`
	LogLevel            string        `yaml:"log_level"`
	CheckConcurrency    int           `yaml:"check_concurrency"`
	CheckTimeout        time.Duration `yaml:"check_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BookmarksFile:       DefaultBookmarksPath(),
		LegacyBookmarksFile: DefaultLegacyBookmarksPath(),
		SettingsDB:          DefaultSettingsPath(),
		StorageFormat:       FormatLines,
		WatchRateLimit:      time.Second,
		LogLevel:            "info",
		CheckConcurrency:    8,
		CheckTimeout:        5 * time.Second,
	}
}

// LoadConfig reads config from the YAML file, layered over the defaults.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	defaults := DefaultConfig()
	raw, err := yaml.Marshal(&defaults)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(raw), kyaml.Parser()); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// Non-fatal: return defaults even if the write fails
		_ = SaveConfig(path, &defaults)
		return &defaults, nil
	}

	if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
		return nil, err
	}

	var config Config
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}

	// empty strings in the file fall back to defaults
	if config.BookmarksFile == "" {
		config.BookmarksFile = defaults.BookmarksFile
	}
	if config.SettingsDB == "" {
		config.SettingsDB = defaults.SettingsDB
	}
	if config.StorageFormat == "" {
		config.StorageFormat = defaults.StorageFormat
	}
	if config.CheckConcurrency <= 0 {
		config.CheckConcurrency = defaults.CheckConcurrency
	}

	return &config, nil
}

// SaveConfig writes config to the YAML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: $XDG_CONFIG_HOME/places/config.yaml
func DefaultConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "places", "config.yaml")
}

// DefaultBookmarksPath returns the GTK 3 bookmarks file.
func DefaultBookmarksPath() string {
	return filepath.Join(xdg.ConfigHome, "gtk-3.0", "bookmarks")
}

// DefaultLegacyBookmarksPath returns the pre-GTK 3 bookmarks file.
func DefaultLegacyBookmarksPath() string {
	return filepath.Join(xdg.Home, ".gtk-bookmarks")
}

// DefaultSettingsPath returns the settings database path.
func DefaultSettingsPath() string {
	return filepath.Join(xdg.StateHome, "places", "settings.db")
}
