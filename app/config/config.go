package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "feedgram.yaml"

// Config holds all feedgram configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Media   MediaConfig   `yaml:"media"`
	Auth    AuthConfig    `yaml:"auth"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StorageConfig configures the badger database.
type StorageConfig struct {
	Path       string `yaml:"path"`
	BackupDir  string `yaml:"backup_dir"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// MediaConfig configures upload storage.
type MediaConfig struct {
	Dir            string   `yaml:"dir"`
	URLPrefix      string   `yaml:"url_prefix"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	AllowedTypes   []string `yaml:"allowed_types"`
}

type AuthConfig struct {
	Secret       string `yaml:"secret"`
	SessionTTL   string `yaml:"session_ttl"`
	CookieName   string `yaml:"cookie_name"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

type FeedConfig struct {
	// StrictOwnership limits post edit and delete to the author.
	StrictOwnership bool `yaml:"strict_ownership"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Path:      "data/feedgram.db",
			BackupDir: "data/backups",
		},
		Media: MediaConfig{
			Dir:            "data/media",
			URLPrefix:      "/media/",
			MaxUploadBytes: 10 << 20,
			AllowedTypes:   []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4"},
		},
		Auth: AuthConfig{
			SessionTTL: "168h",
			CookieName: "feedgram_session",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads .env from the config file's directory, then the YAML file at
// path over the defaults, then the FEEDGRAM_* environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("FEEDGRAM_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("FEEDGRAM_DB"); path != "" {
		c.Storage.Path = path
	}
	if dir := os.Getenv("FEEDGRAM_MEDIA_DIR"); dir != "" {
		c.Media.Dir = dir
	}
	if secret := os.Getenv("FEEDGRAM_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
	if level := os.Getenv("FEEDGRAM_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address not configured")
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage path not configured")
	}
	if len(c.Auth.Secret) < 16 {
		return errors.New("session secret must be at least 16 bytes (set FEEDGRAM_SECRET)")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout bounds how long serve waits for in-flight requests.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionTTL returns the session lifetime as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Auth.SessionTTL, 168*time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
