package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures how stylekit reaches the site and where it logs.
type Config struct {
	SiteURL     string
	Username    string
	AppPassword string
	Timeout     time.Duration
	LogFile     string
	LogLevel    string
}

const (
	defaultConfigPath = "~/.config/stylekit/config.toml"
	defaultSiteURL    = "http://localhost"
	defaultLogFile    = "~/.local/state/stylekit/stylekit.log"
	defaultLogLevel   = "info"
	defaultTimeout    = 10 * time.Second
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		SiteURL:  defaultSiteURL,
		Timeout:  defaultTimeout,
		LogFile:  mustExpand(defaultLogFile),
		LogLevel: defaultLogLevel,
	}
}

// Load locates and parses the stylekit config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		SiteURL        string `toml:"site_url"`
		Username       string `toml:"username"`
		AppPassword    string `toml:"app_password"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if site := strings.TrimSpace(raw.SiteURL); site != "" {
		cfg.SiteURL = site
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.AppPassword = strings.TrimSpace(raw.AppPassword)
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level != "" {
		if _, ok := validLogLevels[level]; !ok {
			return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// HasCredentials reports whether requests should authenticate.
func (c Config) HasCredentials() bool {
	return c.Username != "" && c.AppPassword != ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
