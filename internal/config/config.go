// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRosterAuditCron  = "0 3 * * *"
	DefaultSessionSweepCron = "*/15 * * * *"
	DefaultSessionIdle      = 30 * time.Minute
	DefaultGeocodingBaseURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent        = "ClubSportFrance/1.0"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type GeocodingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	// Throttling applied before each request leaves the process.
	Cooldown     time.Duration `yaml:"cooldown"`
	MaxPerHour   int           `yaml:"max_per_hour"`
	MaxIPPerHour int           `yaml:"max_ip_per_hour"`
	Email        string        `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		TrustProxy  bool   `yaml:"trust_proxy"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`

	Catalog struct {
		// Path overrides the embedded sport catalog when set.
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Geocoding GeocodingConfig `yaml:"geocoding"`

	Scheduler struct {
		RosterAuditCron  string `yaml:"roster_audit_cron"`
		SessionSweepCron string `yaml:"session_sweep_cron"`
		// Roster sessions unused for this long are dropped by the sweep.
		SessionIdle time.Duration `yaml:"session_idle"`
	} `yaml:"scheduler"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Relative catalog paths are resolved against the config file.
	if cfg.Catalog.Path != "" && !filepath.IsAbs(cfg.Catalog.Path) {
		cfg.Catalog.Path = filepath.Join(filepath.Dir(configPath), cfg.Catalog.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML, applies defaults and reads environment overrides. It
// does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()

	// Load sensitive values from environment
	cfg.Geocoding.Email = os.Getenv("GEOCODING_EMAIL")

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.RosterAuditCron == "" {
		c.Scheduler.RosterAuditCron = DefaultRosterAuditCron
	}
	if c.Scheduler.SessionSweepCron == "" {
		c.Scheduler.SessionSweepCron = DefaultSessionSweepCron
	}
	if c.Scheduler.SessionIdle == 0 {
		c.Scheduler.SessionIdle = DefaultSessionIdle
	}
	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = DefaultGeocodingBaseURL
	}
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = DefaultUserAgent
	}
	if c.Geocoding.Timeout == 0 {
		c.Geocoding.Timeout = 10 * time.Second
	}
	// Nominatim's usage policy allows one request per second.
	if c.Geocoding.Cooldown == 0 {
		c.Geocoding.Cooldown = time.Second
	}
	if c.Geocoding.MaxPerHour == 0 {
		c.Geocoding.MaxPerHour = 20
	}
	if c.Geocoding.MaxIPPerHour == 0 {
		c.Geocoding.MaxIPPerHour = 60
	}
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "" || c.App.Environment == "development"
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if _, err := cron.ParseStandard(c.Scheduler.RosterAuditCron); err != nil {
		return fmt.Errorf("invalid scheduler roster_audit_cron %q: %w", c.Scheduler.RosterAuditCron, err)
	}
	if _, err := cron.ParseStandard(c.Scheduler.SessionSweepCron); err != nil {
		return fmt.Errorf("invalid scheduler session_sweep_cron %q: %w", c.Scheduler.SessionSweepCron, err)
	}
	if c.Scheduler.SessionIdle < 0 {
		return fmt.Errorf("scheduler session_idle must not be negative")
	}

	if c.Geocoding.Enabled {
		u, err := url.Parse(c.Geocoding.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("geocoding base_url must be an absolute URL")
		}
		if c.Geocoding.Timeout < 0 || c.Geocoding.Cooldown < 0 {
			return fmt.Errorf("geocoding durations must not be negative")
		}
		if c.Geocoding.MaxPerHour < 0 || c.Geocoding.MaxIPPerHour < 0 {
			return fmt.Errorf("geocoding hourly limits must not be negative")
		}
	}

	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("cors allowed_origins must not contain empty entries")
		}
	}

	return nil
}
