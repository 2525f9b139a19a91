package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client-side settings for finder.
type Config struct {
	APIURL        string
	Timeout       time.Duration
	UploadTimeout time.Duration
	PollInterval  time.Duration
	LogFile       string
	LogLevel      slog.Level
}

// EnvAPIURL overrides api_url when set.
const EnvAPIURL = "FINDER_API_URL"

const (
	defaultConfigPath    = "~/.config/finder/config.toml"
	defaultAPIURL        = "http://localhost:8000"
	defaultTimeout       = 30 * time.Second
	defaultUploadTimeout = 120 * time.Second
	defaultPollInterval  = 30 * time.Second
	defaultLogFile       = "~/.local/state/finder/finder.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:        defaultAPIURL,
		Timeout:       defaultTimeout,
		UploadTimeout: defaultUploadTimeout,
		PollInterval:  defaultPollInterval,
		LogFile:       mustExpand(defaultLogFile),
		LogLevel:      slog.LevelInfo,
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it is missing. FINDER_API_URL wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
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
		APIURL        string `toml:"api_url"`
		Timeout       string `toml:"timeout"`
		UploadTimeout string `toml:"upload_timeout"`
		PollInterval  string `toml:"poll_interval"`
		LogFile       string `toml:"log_file"`
		LogLevel      string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"timeout", raw.Timeout, &cfg.Timeout},
		{"upload_timeout", raw.UploadTimeout, &cfg.UploadTimeout},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, d.value, d.dest); err != nil {
			return Config{}, err
		}
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func parseDuration(name, value string, dest *time.Duration) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", name, value)
	}
	*dest = d
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
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
