package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the instaview service.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" json:"allowed_origins"`
}

// InstagramConfig holds the bot account and upstream client settings.
type InstagramConfig struct {
	BotUsername    string        `yaml:"bot_username" json:"bot_username"`
	BotPassword    string        `yaml:"bot_password" json:"-"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	DataDir        string        `yaml:"data_dir" json:"data_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	ProxyTimeout   time.Duration `yaml:"proxy_timeout" json:"proxy_timeout"`
}

// RateLimitConfig bounds the request rate against the upstream API.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Instagram: InstagramConfig{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			DataDir:        "./data",
			RequestTimeout: 30 * time.Second,
			ProxyTimeout:   20 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if addr := os.Getenv("INSTAVIEW_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("INSTAVIEW_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitAndTrim(origins)
	}
	if user := os.Getenv("IG_BOT_USER"); user != "" {
		c.Instagram.BotUsername = user
	}
	if pass := os.Getenv("IG_BOT_PASS"); pass != "" {
		c.Instagram.BotPassword = pass
	}
	if ua := os.Getenv("INSTAVIEW_USER_AGENT"); ua != "" {
		c.Instagram.UserAgent = ua
	}
	if dir := os.Getenv("INSTAVIEW_DATA_DIR"); dir != "" {
		c.Instagram.DataDir = dir
	}
	if rpm := os.Getenv("INSTAVIEW_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if level := os.Getenv("INSTAVIEW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("INSTAVIEW_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. An empty path checks
// the default locations; a missing default file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server addr must not be empty")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("requests_per_minute must be positive")
	}
	if c.Instagram.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.Instagram.ProxyTimeout <= 0 {
		return errors.New("proxy_timeout must be positive")
	}
	return nil
}

// Load builds the effective configuration: defaults, then an optional
// .env file, then the YAML config file, then environment overrides.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionFile returns the path of the persisted session for a bot account.
func (c *Config) SessionFile() string {
	return filepath.Join(c.Instagram.DataDir, c.Instagram.BotUsername+".session.json")
}

func findConfigFile() string {
	candidates := []string{
		"instaview.yaml",
		"instaview.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "instaview", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
