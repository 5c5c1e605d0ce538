package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"weather-app/internal/models"
)

type Config struct {
	OpenMeteo  OpenMeteoConfig  `yaml:"open_meteo"`
	Lookup     LookupConfig     `yaml:"lookup"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Digest     DigestConfig     `yaml:"digest"`
	Email      EmailConfig      `yaml:"email"`
	AI         AIConfig         `yaml:"ai"`
}

type OpenMeteoConfig struct {
	GeocodingURL      string        `yaml:"geocoding_url"`
	ForecastURL       string        `yaml:"forecast_url"`
	Language          string        `yaml:"language"`
	MaxResults        int           `yaml:"max_results"`
	GeocodingTimeout  time.Duration `yaml:"geocoding_timeout"`
	ForecastTimeout   time.Duration `yaml:"forecast_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CacheTTL          time.Duration `yaml:"cache_ttl"` // 0 means the 5m default; negative disables the forecast cache
}

type LookupConfig struct {
	DefaultCity string `yaml:"default_city"`
	Units       string `yaml:"units"`
}

type ServerConfig struct {
	Port       int           `yaml:"port" env:"PORT"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

type DigestConfig struct {
	Enabled   bool    `yaml:"enabled"`
	City      string  `yaml:"city"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Units     string  `yaml:"units"`
	Schedule  string  `yaml:"schedule"`
	DataDir   string  `yaml:"data_dir"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string `yaml:"model"`
}

// Load reads .env and the YAML config file (CONFIG_FILE, default config.yaml).
// A missing config file is not an error: defaults and environment apply.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		log.Printf("Config file %s not found, using defaults", configFile)
		data = nil
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}
	return cfg, nil
}

// Parse builds a validated Config from YAML bytes, applying environment
// fallbacks and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		} else {
			log.Printf("Warning: ignoring invalid PORT %q: %v", port, err)
		}
	}
}

func (c *Config) applyDefaults() {
	om := &c.OpenMeteo
	if om.GeocodingURL == "" {
		om.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if om.ForecastURL == "" {
		om.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	if om.Language == "" {
		om.Language = "en"
	}
	if om.MaxResults == 0 {
		om.MaxResults = 5
	}
	if om.GeocodingTimeout == 0 {
		om.GeocodingTimeout = 20 * time.Second
	}
	if om.ForecastTimeout == 0 {
		om.ForecastTimeout = 60 * time.Second
	}
	if om.RequestsPerSecond == 0 {
		om.RequestsPerSecond = 5
	}
	if om.Burst == 0 {
		om.Burst = 5
	}
	if om.CacheTTL == 0 {
		om.CacheTTL = 5 * time.Minute
	}

	if c.Lookup.DefaultCity == "" {
		c.Lookup.DefaultCity = "Bijnor"
	}
	if c.Lookup.Units == "" {
		c.Lookup.Units = string(models.UnitsMetric)
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = 30 * time.Minute
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8081
	}

	if c.Digest.City == "" && c.Digest.Latitude == 0 && c.Digest.Longitude == 0 {
		c.Digest.City = c.Lookup.DefaultCity
	}
	if c.Digest.Units == "" {
		c.Digest.Units = c.Lookup.Units
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 0 7 * * *" // Daily at 7 AM (cron with seconds)
	}
	if c.Digest.DataDir == "" {
		c.Digest.DataDir = "data"
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
}

func (c *Config) validate() error {
	if _, err := models.ParseUnitSystem(c.Lookup.Units); err != nil {
		return fmt.Errorf("lookup.units: %w", err)
	}
	if c.OpenMeteo.MaxResults < 0 {
		return fmt.Errorf("open_meteo.max_results must be positive, got %d", c.OpenMeteo.MaxResults)
	}
	if c.OpenMeteo.RequestsPerSecond < 0 || c.OpenMeteo.Burst < 0 {
		return fmt.Errorf("open_meteo rate limit must not be negative")
	}
	if c.OpenMeteo.CacheTTL < 0 {
		// A negative TTL disables caching; normalize it so callers only check for zero
		c.OpenMeteo.CacheTTL = 0
	}
	return nil
}

// ValidateDigest checks the settings needed to run the scheduled forecast digest
func (c *Config) ValidateDigest() error {
	if _, err := models.ParseUnitSystem(c.Digest.Units); err != nil {
		return fmt.Errorf("digest.units: %w", err)
	}
	if c.Digest.City == "" && (c.Digest.Latitude == 0 && c.Digest.Longitude == 0) {
		return fmt.Errorf("digest location is required (set digest.city or digest.latitude/longitude)")
	}
	if c.Email.SMTPServer == "" {
		return fmt.Errorf("SMTP server is required (set email.smtp_server)")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
	}
	if c.Email.Password == "" {
		return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	if c.Email.FromEmail == "" || c.Email.ToEmail == "" {
		return fmt.Errorf("email.from_email and email.to_email are required")
	}
	return nil
}

// DefaultUnits returns the configured lookup unit system
func (c *Config) DefaultUnits() models.UnitSystem {
	u, err := models.ParseUnitSystem(c.Lookup.Units)
	if err != nil {
		return models.UnitsMetric
	}
	return u
}
