package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Manuscript storage
	StoryRoot   string
	StoryFolder string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Edit sessions
	SessionTTL   time.Duration
	HistoryLimit int

	// Bulk load
	LoadConcurrency int

	// Heading family override file (YAML)
	HeadingPatterns string

	// PDF
	PDFFallbackPdftotext bool

	// Optional pathstore mirror
	PathstoreURL    string
	PathstoreAPIKey string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8090")
	v.SetDefault("STORY_ROOT", ".")
	v.SetDefault("STORY_FOLDER", "story")
	v.SetDefault("MAX_UPLOAD_BYTES", int64(52428800)) // 50MB
	v.SetDefault("SESSION_TTL", 2*time.Hour)
	v.SetDefault("HISTORY_LIMIT", 500)
	v.SetDefault("LOAD_CONCURRENCY", 8)
	v.SetDefault("PDF_FALLBACK_PDFTOTEXT", true)

	// Registered so AutomaticEnv picks them up on Get.
	for _, k := range []string{"API_KEY", "HEADING_PATTERNS", "PATHSTORE_URL", "PATHSTORE_API_KEY"} {
		v.SetDefault(k, "")
	}
}

// Load reads configuration from the environment, layered over an optional
// YAML/TOML/JSON file named by CONFIG_FILE. Environment values win.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Port: v.GetString("PORT"),

		StoryRoot:   v.GetString("STORY_ROOT"),
		StoryFolder: v.GetString("STORY_FOLDER"),

		APIKey: v.GetString("API_KEY"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		SessionTTL:   v.GetDuration("SESSION_TTL"),
		HistoryLimit: v.GetInt("HISTORY_LIMIT"),

		LoadConcurrency: v.GetInt("LOAD_CONCURRENCY"),

		HeadingPatterns: v.GetString("HEADING_PATTERNS"),

		PDFFallbackPdftotext: v.GetBool("PDF_FALLBACK_PDFTOTEXT"),

		PathstoreURL:    v.GetString("PATHSTORE_URL"),
		PathstoreAPIKey: v.GetString("PATHSTORE_API_KEY"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 500
	}
	if cfg.LoadConcurrency <= 0 {
		cfg.LoadConcurrency = 8
	}

	return cfg, nil
}

// MirrorEnabled reports whether saved stories are also sent to pathstore.
func (c Config) MirrorEnabled() bool {
	return c.PathstoreURL != ""
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.StoryRoot == "" {
		return errors.New("STORY_ROOT is required")
	}
	if c.StoryFolder == "" {
		return errors.New("STORY_FOLDER is required")
	}
	if c.MirrorEnabled() && c.PathstoreAPIKey == "" {
		return errors.New("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	if c.HeadingPatterns != "" {
		if _, err := os.Stat(c.HeadingPatterns); err != nil {
			return fmt.Errorf("HEADING_PATTERNS: %w", err)
		}
	}
	return nil
}
