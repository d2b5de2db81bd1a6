package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcong315/SpotifyProfile/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Spotify SpotifyConfig  `yaml:"spotify"`
	Logging logging.Config `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port   string `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// SpotifyConfig holds Web API client settings.
type SpotifyConfig struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// MetricsConfig holds the Prometheus endpoint settings. An empty port
// disables the metrics server.
type MetricsConfig struct {
	Port string `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Spotify: SpotifyConfig{
			APIURL:         "https://api.spotify.com/v1",
			RequestTimeout: 30 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Port: "9090",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), the dotenv file at envPath (if it exists) and the process
// environment. Variables already set in the environment win over the dotenv
// file, and the environment wins over YAML.
func Load(path, envPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("SPOTIFY_API_URL"); v != "" {
		c.Spotify.APIURL = v
	}
	if v := os.Getenv("SPOTIFY_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SPOTIFY_REQUEST_TIMEOUT: %w", err)
		}
		c.Spotify.RequestTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"LOG_FILE_MAX_SIZE_MB", &c.Logging.FileMaxSizeMB},
		{"LOG_FILE_MAX_BACKUPS", &c.Logging.FileMaxBackups},
		{"LOG_FILE_MAX_AGE_DAYS", &c.Logging.FileMaxAgeDays},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	// Set but empty disables the metrics server.
	if v, ok := os.LookupEnv("METRICS_PORT"); ok {
		c.Metrics.Port = v
	}
	return nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if err := validatePort(c.Server.Port); err != nil {
		return fmt.Errorf("server port: %w", err)
	}
	if c.Metrics.Port != "" {
		if err := validatePort(c.Metrics.Port); err != nil {
			return fmt.Errorf("metrics port: %w", err)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port %s collides with server port", c.Metrics.Port)
		}
	}

	u, err := url.Parse(c.Spotify.APIURL)
	if err != nil {
		return fmt.Errorf("spotify api url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("spotify api url %q must be an absolute http(s) URL", c.Spotify.APIURL)
	}
	if c.Spotify.RequestTimeout <= 0 {
		return fmt.Errorf("spotify request timeout must be positive, got %v", c.Spotify.RequestTimeout)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

func validatePort(p string) error {
	port, err := strconv.Atoi(p)
	if err != nil {
		return fmt.Errorf("invalid port %q", p)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
