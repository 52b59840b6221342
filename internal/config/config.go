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

// Config is the kitchenhub client configuration.
type Config struct {
	Device    DeviceConfig
	Lights    LightsConfig
	Timer     TimerConfig
	Checklist ChecklistConfig
	Log       LogConfig
}

// DeviceConfig locates the ESP32.
type DeviceConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// LightsConfig tunes the dishwasher-lights binding.
type LightsConfig struct {
	PollInterval time.Duration
	Initial      string
}

// TimerConfig tunes the timer binding.
type TimerConfig struct {
	PollInterval time.Duration
	Duration     time.Duration
}

// ChecklistConfig locates the checklist database.
type ChecklistConfig struct {
	DBPath string
}

// LogConfig controls the client's log file.
type LogConfig struct {
	Path  string
	Level string
}

const (
	defaultConfigPath     = "~/.config/kitchenhub/config.toml"
	defaultBaseURL        = "http://10.0.0.122"
	defaultRequestTimeout = time.Second
	defaultLightsInterval = 500 * time.Millisecond
	defaultLightsInitial  = "dirty"
	defaultTimerInterval  = 300 * time.Millisecond
	defaultTimerDuration  = 5 * time.Minute
	defaultDBPath         = "~/.local/share/kitchenhub/checklist.db"
	defaultLogPath        = "~/.local/share/kitchenhub/kitchenhub.log"
	defaultLogLevel       = "info"
)

var logLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Device:    DeviceConfig{BaseURL: defaultBaseURL, RequestTimeout: defaultRequestTimeout},
		Lights:    LightsConfig{PollInterval: defaultLightsInterval, Initial: defaultLightsInitial},
		Timer:     TimerConfig{PollInterval: defaultTimerInterval, Duration: defaultTimerDuration},
		Checklist: ChecklistConfig{DBPath: mustExpand(defaultDBPath)},
		Log:       LogConfig{Path: mustExpand(defaultLogPath), Level: defaultLogLevel},
	}
}

type rawConfig struct {
	Device struct {
		BaseURL        string `toml:"base_url"`
		RequestTimeout string `toml:"request_timeout"`
	} `toml:"device"`
	Lights struct {
		PollInterval string `toml:"poll_interval"`
		Initial      string `toml:"initial"`
	} `toml:"lights"`
	Timer struct {
		PollInterval string `toml:"poll_interval"`
		Duration     string `toml:"duration"`
	} `toml:"timer"`
	Checklist struct {
		DBPath string `toml:"db_path"`
	} `toml:"checklist"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
}

// Load locates and parses the config, falling back to defaults when missing.
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

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Device.BaseURL); v != "" {
		cfg.Device.BaseURL = v
	}
	if err := setDuration(&cfg.Device.RequestTimeout, "device.request_timeout", raw.Device.RequestTimeout); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Lights.PollInterval, "lights.poll_interval", raw.Lights.PollInterval); err != nil {
		return Config{}, err
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Lights.Initial)); v != "" {
		if v != "dirty" && v != "clean" {
			return Config{}, fmt.Errorf("parse config: lights.initial: %q is not dirty or clean", raw.Lights.Initial)
		}
		cfg.Lights.Initial = v
	}
	if err := setDuration(&cfg.Timer.PollInterval, "timer.poll_interval", raw.Timer.PollInterval); err != nil {
		return Config{}, err
	}
	if err := setDuration(&cfg.Timer.Duration, "timer.duration", raw.Timer.Duration); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.Checklist.DBPath); v != "" {
		cfg.Checklist.DBPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.Log.Path = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Log.Level)); v != "" {
		if _, ok := logLevels[v]; !ok {
			return Config{}, fmt.Errorf("parse config: log.level: unknown level %q", raw.Log.Level)
		}
		cfg.Log.Level = v
	}

	return cfg, nil
}

// setDuration parses raw into dst when raw is set. Durations must be positive.
func setDuration(dst *time.Duration, key, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s: must be positive, got %s", key, raw)
	}
	*dst = d
	return nil
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
