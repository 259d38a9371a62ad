package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key so the host environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "STORY_ROOT", "STORY_FOLDER", "API_KEY", "MAX_UPLOAD_BYTES",
		"SESSION_TTL", "HISTORY_LIMIT", "LOAD_CONCURRENCY", "HEADING_PATTERNS",
		"PDF_FALLBACK_PDFTOTEXT", "PATHSTORE_URL", "PATHSTORE_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "story", cfg.StoryFolder)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 500, cfg.HistoryLimit)
	assert.True(t, cfg.PDFFallbackPdftotext)
	assert.False(t, cfg.MirrorEnabled())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("HISTORY_LIMIT", "-1")
	t.Setenv("API_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 500, cfg.HistoryLimit)
	assert.Equal(t, "k", cfg.APIKey)
}

func TestLoad_FileUnderEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "storysplit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"7000\"\nSTORY_FOLDER: books\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STORY_FOLDER", "manuscripts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "manuscripts", cfg.StoryFolder)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "8090", StoryRoot: ".", StoryFolder: "story"}
	assert.NoError(t, base.Validate())

	mirror := base
	mirror.PathstoreURL = "http://localhost:8080"
	assert.Error(t, mirror.Validate())
	mirror.PathstoreAPIKey = "key"
	assert.NoError(t, mirror.Validate())

	patterns := base
	patterns.HeadingPatterns = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, patterns.Validate())
}
