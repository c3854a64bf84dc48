// Package config loads client settings from YAML, an optional .env file and
// MUGLOAR_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Mock    MockConfig    `yaml:"mock"`
}

type ServerConfig struct {
	BaseURL       string `yaml:"base_url"`
	WebSocketPath string `yaml:"websocket_path"`
	Token         string `yaml:"token"`
}

type ClientConfig struct {
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
}

type HistoryConfig struct {
	PageSize int `yaml:"page_size"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type MockConfig struct {
	EventInterval time.Duration `yaml:"event_interval"`
}

// Environment variables that override file values.
const (
	EnvBaseURL  = "MUGLOAR_BASE_URL"
	EnvToken    = "MUGLOAR_TOKEN"
	EnvLogLevel = "MUGLOAR_LOG_LEVEL"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:       "http://127.0.0.1:8080",
			WebSocketPath: "/game-websocket/websocket",
		},
		Client: ClientConfig{
			HTTPTimeout:      10 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     10 * time.Second,
		},
		History: HistoryConfig{
			PageSize: 10,
		},
		Log: LogConfig{
			File:  "mugloar-tui.log",
			Level: "info",
		},
		Mock: MockConfig{
			EventInterval: 700 * time.Millisecond,
		},
	}
}

// Default returns the built-in configuration with environment overrides
// applied.
func Default() *Config {
	cfg := defaultConfig()
	cfg.applyEnv()
	return cfg
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults are used instead.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the fields the client cannot run without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.base_url: missing host")
	}
	if !strings.HasPrefix(c.Server.WebSocketPath, "/") {
		return fmt.Errorf("server.websocket_path must start with /")
	}
	if c.History.PageSize <= 0 {
		c.History.PageSize = 10
	}
	return nil
}

// HTTPBase returns the base URL without a trailing slash.
func (c *Config) HTTPBase() string {
	return strings.TrimRight(c.Server.BaseURL, "/")
}

// WebSocketURL converts http://host:port → ws://host:port/<websocket_path>.
func (c *Config) WebSocketURL() string {
	u, err := url.Parse(c.HTTPBase())
	if err != nil {
		return "ws://127.0.0.1:8080" + c.Server.WebSocketPath
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s%s%s", scheme, u.Host, strings.TrimRight(u.Path, "/"), c.Server.WebSocketPath)
}
