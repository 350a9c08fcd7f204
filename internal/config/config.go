package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Content source providers.
const (
	CMSProviderSanity = "sanity"
	CMSProviderSQLite = "sqlite"
	CMSProviderNone   = "none"
)

// Image URL providers.
const (
	ImageProviderAuto       = "auto"
	ImageProviderSanity     = "sanity"
	ImageProviderCloudinary = "cloudinary"
	ImageProviderS3         = "s3"
	ImageProviderNone       = "none"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CMS      CMSConfig      `yaml:"cms"`
	Database DatabaseConfig `yaml:"database"`
	Images   ImagesConfig   `yaml:"images"`
	Contact  ContactConfig  `yaml:"contact"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	BaseURL         string   `yaml:"base_url"`
	PublicDir       string   `yaml:"public_dir"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CMSConfig selects and configures the content source.
type CMSConfig struct {
	Provider   string   `yaml:"provider"`
	ProjectID  string   `yaml:"project_id"`
	Dataset    string   `yaml:"dataset"`
	APIVersion string   `yaml:"api_version"`
	UseCDN     bool     `yaml:"use_cdn"`
	Token      string   `yaml:"-"` // env-only, never in YAML
	Timeout    Duration `yaml:"timeout"`
}

// DatabaseConfig contains settings for the local SQLite content store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImagesConfig selects the image URL builder.
type ImagesConfig struct {
	Provider      string   `yaml:"provider"`
	CloudinaryURL string   `yaml:"-"` // env-only, never in YAML
	S3            S3Config `yaml:"s3"`
}

// S3Config contains S3-compatible asset storage settings.
type S3Config struct {
	Endpoint  string   `yaml:"endpoint"`
	Bucket    string   `yaml:"bucket"`
	Region    string   `yaml:"region"`
	UseSSL    *bool    `yaml:"use_ssl"`
	AccessKey string   `yaml:"-"` // env-only
	SecretKey string   `yaml:"-"` // env-only
	URLExpiry Duration `yaml:"url_expiry"`
}

// ContactConfig configures contact form dispatch.
type ContactConfig struct {
	// Endpoint is an external submission endpoint. Empty means submissions
	// are handed to the notifier in-process.
	Endpoint        string   `yaml:"endpoint"`
	WebhookURL      string   `yaml:"-"` // env-only, never in YAML
	Timeout         Duration `yaml:"timeout"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	RateLimitRefill Duration `yaml:"rate_limit_refill"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("PORTFOLIO_CONFIG_PATH", "config/portfolio.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			BaseURL:         "http://localhost:8080",
			PublicDir:       "public",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		CMS: CMSConfig{
			Provider:   CMSProviderNone,
			Dataset:    "production",
			APIVersion: "2024-01-01",
			UseCDN:     true,
			Timeout:    Duration(5 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/portfolio.db",
		},
		Images: ImagesConfig{
			Provider: ImageProviderAuto,
			S3: S3Config{
				Region:    "us-east-1",
				URLExpiry: Duration(1 * time.Hour),
			},
		},
		Contact: ContactConfig{
			Timeout:         Duration(10 * time.Second),
			RateLimitBurst:  5,
			RateLimitRefill: Duration(12 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("PORTFOLIO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTFOLIO_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("PORTFOLIO_PUBLIC_DIR"); v != "" {
		cfg.Server.PublicDir = v
	}
	setDuration("PORTFOLIO_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("PORTFOLIO_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("PORTFOLIO_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// CMS
	if v := os.Getenv("PORTFOLIO_CMS_PROVIDER"); v != "" {
		cfg.CMS.Provider = v
	}
	if v := os.Getenv("PORTFOLIO_CMS_PROJECT_ID"); v != "" {
		cfg.CMS.ProjectID = v
	}
	if v := os.Getenv("PORTFOLIO_CMS_DATASET"); v != "" {
		cfg.CMS.Dataset = v
	}
	if v := os.Getenv("PORTFOLIO_CMS_API_VERSION"); v != "" {
		cfg.CMS.APIVersion = v
	}
	if v := os.Getenv("PORTFOLIO_CMS_USE_CDN"); v != "" {
		cfg.CMS.UseCDN = v == "true" || v == "1"
	}
	if v := os.Getenv("PORTFOLIO_CMS_TOKEN"); v != "" {
		cfg.CMS.Token = v
	}
	setDuration("PORTFOLIO_CMS_TIMEOUT", &cfg.CMS.Timeout)

	// Database
	if v := os.Getenv("PORTFOLIO_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Images (CLOUDINARY_URL is the SDK's own convention)
	if v := os.Getenv("PORTFOLIO_IMAGE_PROVIDER"); v != "" {
		cfg.Images.Provider = v
	}
	if v := os.Getenv("CLOUDINARY_URL"); v != "" {
		cfg.Images.CloudinaryURL = v
	}
	if v := os.Getenv("PORTFOLIO_S3_ENDPOINT"); v != "" {
		cfg.Images.S3.Endpoint = v
	}
	if v := os.Getenv("PORTFOLIO_S3_BUCKET"); v != "" {
		cfg.Images.S3.Bucket = v
	}
	if v := os.Getenv("PORTFOLIO_S3_REGION"); v != "" {
		cfg.Images.S3.Region = v
	}
	if v := os.Getenv("PORTFOLIO_S3_ACCESS_KEY"); v != "" {
		cfg.Images.S3.AccessKey = v
	}
	if v := os.Getenv("PORTFOLIO_S3_SECRET_KEY"); v != "" {
		cfg.Images.S3.SecretKey = v
	}
	if v := os.Getenv("PORTFOLIO_S3_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Images.S3.UseSSL = &useSSL
	}
	setDuration("PORTFOLIO_S3_URL_EXPIRY", &cfg.Images.S3.URLExpiry)

	// Contact
	if v := os.Getenv("PORTFOLIO_CONTACT_ENDPOINT"); v != "" {
		cfg.Contact.Endpoint = v
	}
	if v := os.Getenv("PORTFOLIO_CONTACT_WEBHOOK_URL"); v != "" {
		cfg.Contact.WebhookURL = v
	}
	setDuration("PORTFOLIO_CONTACT_TIMEOUT", &cfg.Contact.Timeout)

	// Log
	if v := os.Getenv("PORTFOLIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORTFOLIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks provider names and provider-specific settings, and
// resolves the "auto" image provider.
func (c *Config) validate() error {
	switch c.CMS.Provider {
	case CMSProviderSanity:
		if c.CMS.ProjectID == "" {
			return errors.New("cms.project_id is required for the sanity provider")
		}
		if c.CMS.Dataset == "" {
			return errors.New("cms.dataset is required for the sanity provider")
		}
	case CMSProviderSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite provider")
		}
	case CMSProviderNone:
	default:
		return fmt.Errorf("unknown cms.provider %q", c.CMS.Provider)
	}

	if c.Images.Provider == ImageProviderAuto || c.Images.Provider == "" {
		// Documents imported into the local store keep their Sanity asset refs.
		if c.CMS.ProjectID != "" {
			c.Images.Provider = ImageProviderSanity
		} else {
			c.Images.Provider = ImageProviderNone
		}
	}

	switch c.Images.Provider {
	case ImageProviderSanity:
		if c.CMS.ProjectID == "" {
			return errors.New("cms.project_id is required for the sanity image provider")
		}
	case ImageProviderCloudinary:
		if c.Images.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL is required for the cloudinary image provider")
		}
	case ImageProviderS3:
		if c.Images.S3.Bucket == "" || c.Images.S3.Endpoint == "" {
			return errors.New("images.s3.bucket and images.s3.endpoint are required for the s3 image provider")
		}
	case ImageProviderNone:
	default:
		return fmt.Errorf("unknown images.provider %q", c.Images.Provider)
	}

	if c.Contact.RateLimitBurst < 1 {
		return errors.New("contact.rate_limit_burst must be at least 1")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
