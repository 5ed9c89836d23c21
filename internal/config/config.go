package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PlaceholderAPIKey is the value shipped in the settings template. It counts
// as not configured.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Config holds client and host configuration loaded from YAML and env.
// It also serves as the client's key provider.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	CityMaxLength int
	DefaultCity   string

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	City struct {
		MaxLength   *int   `yaml:"max_length"`
		DefaultCity string `yaml:"default"`
	} `yaml:"city"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// IsAPIKeyConfigured reports whether a usable API key is present.
func (c *Config) IsAPIKeyConfigured() bool {
	key := strings.TrimSpace(c.WeatherAPIKey)
	return key != "" && key != PlaceholderAPIKey
}

// APIKey returns the trimmed API key.
func (c *Config) APIKey() string {
	return strings.TrimSpace(c.WeatherAPIKey)
}

// Load reads config/{ENV_NAME}.yaml (default dev) under dir, then the API key
// from WEATHER_API_KEY (a .env file in dir may set it) or config/secrets.yaml.
// A missing key is not an error here; fetches fail with a configuration error
// until one is supplied.
func Load(dir string) (*Config, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("config: get working directory: %w", err)
		}
		dir = cwd
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(dir, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}
	cfg.ServerPort = fc.Server.Port
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		key, err := readSecrets(filepath.Join(dir, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}

	cfg.WeatherAPIURL = strings.TrimSpace(os.Getenv("WEATHER_API_URL"))
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = strings.TrimSpace(fc.WeatherAPI.URL)
	}
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "http://api.openweathermap.org/data/2.5/weather"
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 10*time.Second)

	cfg.CityMaxLength = 100
	if fc.City.MaxLength != nil {
		cfg.CityMaxLength = *fc.City.MaxLength
	}
	cfg.DefaultCity = strings.TrimSpace(fc.City.DefaultCity)
	if cfg.DefaultCity == "" {
		cfg.DefaultCity = "London"
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv sets variables from path without overriding ones already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func readSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return sec.WeatherAPIKey, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero or negative durations are returned as-is for validate to reject.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.CityMaxLength < 0 {
		return fmt.Errorf("city.max_length must not be negative, got %d", cfg.CityMaxLength)
	}
	if !strings.HasPrefix(cfg.WeatherAPIURL, "http://") && !strings.HasPrefix(cfg.WeatherAPIURL, "https://") {
		return fmt.Errorf("weather_api.url must be an http(s) URL, got %q", cfg.WeatherAPIURL)
	}
	return nil
}
