package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines client configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	State StateConfig `yaml:"state"`
	Log   LogConfig   `yaml:"log"`
	Demo  DemoConfig  `yaml:"demo"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type StateConfig struct {
	// Path of the durable client-state database. ":memory:" disables
	// persistence across restarts.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DemoConfig configures the built-in stub backend (serve-demo).
type DemoConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// Load reads configuration from an optional .env file, an optional YAML
// file, and environment variables, in increasing precedence.
func Load() (Config, error) {
	// Missing .env is fine; it only seeds the environment.
	_ = godotenv.Load()

	cfg := Config{
		API: APIConfig{
			BaseURL:        "http://localhost:9010",
			TimeoutSeconds: 15,
		},
		State: StateConfig{
			Path: "labordesk.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Demo: DemoConfig{
			Host:   "127.0.0.1",
			Port:   9010,
			Secret: "labordesk-demo",
		},
	}

	if path := os.Getenv("LABORDESK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if baseURL := os.Getenv("LABORDESK_API_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if timeoutStr := os.Getenv("LABORDESK_API_TIMEOUT_SECONDS"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LABORDESK_API_TIMEOUT_SECONDS: %w", err)
		}
		cfg.API.TimeoutSeconds = timeout
	}
	if statePath := os.Getenv("LABORDESK_STATE_PATH"); statePath != "" {
		cfg.State.Path = statePath
	}
	if level := os.Getenv("LABORDESK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if host := os.Getenv("LABORDESK_DEMO_HOST"); host != "" {
		cfg.Demo.Host = host
	}
	if portStr := os.Getenv("LABORDESK_DEMO_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LABORDESK_DEMO_PORT: %w", err)
		}
		cfg.Demo.Port = port
	}
	if secret := os.Getenv("LABORDESK_DEMO_SECRET"); secret != "" {
		cfg.Demo.Secret = secret
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
