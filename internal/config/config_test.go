package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, filepath.Join("/xdg/data", "stowaway", "stowaway.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/xdg/data", "stowaway", "photos"), cfg.PhotoPath)
	assert.Equal(t, "local", cfg.PhotoBackend)
	assert.Equal(t, 8, cfg.LoaderMaxConcurrency)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("PHOTO_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "stowaway-photos")
	t.Setenv("S3_PATH_STYLE", "true")
	t.Setenv("SEARCH_CACHE_SIZE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "s3", cfg.PhotoBackend)
	assert.Equal(t, "stowaway-photos", cfg.S3Bucket)
	assert.True(t, cfg.S3PathStyle)
	assert.Zero(t, cfg.SearchCacheSize)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stowaway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":7000"
log_level: debug
loader_max_concurrency: 3
`), 0o600))
	t.Setenv("STOWAWAY_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3, cfg.LoaderMaxConcurrency)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"PHOTO_BACKEND": "ftp"}},
		{"s3 without bucket", map[string]string{"PHOTO_BACKEND": "s3"}},
		{"bad integer", map[string]string{"SEARCH_CACHE_SIZE": "lots"}},
		{"bad boolean", map[string]string{"S3_PATH_STYLE": "sometimes"}},
		{"zero concurrency", map[string]string{"LOADER_MAX_CONCURRENCY": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("STOWAWAY_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
