package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/places/internal/storage"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places", "config.yaml")

	cfg, err := storage.LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *cfg, storage.DefaultConfig())

	_, err = os.Stat(path)
	assert.NilError(t, err, "config file should be created")

	// the written file loads back to the same values
	again, err := storage.LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *again, storage.DefaultConfig())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `bookmarks_file: /tmp/my-bookmarks
watch_rate_limit: 250ms
log_level: debug
storage_format: json
`
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := storage.LoadConfig(path)
	assert.NilError(t, err)

	defaults := storage.DefaultConfig()
	assert.Equal(t, cfg.BookmarksFile, "/tmp/my-bookmarks")
	assert.Equal(t, cfg.WatchRateLimit, 250*time.Millisecond)
	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Equal(t, cfg.StorageFormat, storage.FormatJSON)
	assert.Equal(t, cfg.SettingsDB, defaults.SettingsDB)
	assert.Equal(t, cfg.CheckConcurrency, defaults.CheckConcurrency)
	assert.Equal(t, cfg.CheckTimeout, defaults.CheckTimeout)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("bookmarks_file: [unterminated\n"), 0644))

	_, err := storage.LoadConfig(path)
	assert.Assert(t, err != nil)
}
