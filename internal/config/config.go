package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	defaultAPIURL  = "http://localhost:5000/api"
	defaultBackend = "file"
	defaultPrefix  = "irondoc:"
)

type Config struct {
	APIURL string `env:"IRONDOC_API_URL" envDefault:"http://localhost:5000/api"`

	// State is where the session and profile overrides live: file, redis or
	// memory.
	StateBackend string `env:"IRONDOC_STATE_BACKEND" envDefault:"file"`
	StatePath    string `env:"IRONDOC_STATE_PATH"`
	StatePrefix  string `env:"IRONDOC_STATE_PREFIX" envDefault:"irondoc:"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Meilisearch is disabled when MeiliURL is empty.
	MeiliURL       string `env:"MEILI_URL"`
	MeiliMasterKey string `env:"MEILI_MASTER_KEY"`

	// Avatars are embedded as data URLs unless an endpoint is set.
	AvatarEndpoint  string `env:"IRONDOC_AVATAR_S3_ENDPOINT"`
	AvatarAccessKey string `env:"IRONDOC_AVATAR_S3_ACCESS_KEY"`
	AvatarSecretKey string `env:"IRONDOC_AVATAR_S3_SECRET_KEY"`
	AvatarBucket    string `env:"IRONDOC_AVATAR_S3_BUCKET" envDefault:"irondoc-avatars"`
	AvatarUseSSL    bool   `env:"IRONDOC_AVATAR_S3_SSL"`
	AvatarPublicURL string `env:"IRONDOC_AVATAR_PUBLIC_URL"`

	LogLevel       string `env:"IRONDOC_LOG_LEVEL" envDefault:"warn"`
	ConfirmRestore bool   `env:"IRONDOC_CONFIRM_RESTORE"`
}

// Load reads the environment. A malformed value is reported as an error
// naming every field that failed.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.StateBackend == "" {
		cfg.StateBackend = defaultBackend
	}
	if cfg.StatePrefix == "" {
		cfg.StatePrefix = defaultPrefix
	}
	if cfg.StatePath == "" {
		cfg.StatePath = defaultStatePath()
	}
	return cfg, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "irondoc", "state.json")
}

// SearchEnabled reports whether a Meilisearch index is configured.
func (c Config) SearchEnabled() bool {
	return c.MeiliURL != ""
}

// AvatarStorageEnabled reports whether avatars go to object storage.
func (c Config) AvatarStorageEnabled() bool {
	return c.AvatarEndpoint != ""
}
