package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Device.BaseURL != defaultBaseURL {
		t.Fatalf("Device.BaseURL = %q, want %q", cfg.Device.BaseURL, defaultBaseURL)
	}
	if cfg.Device.RequestTimeout != time.Second {
		t.Fatalf("Device.RequestTimeout = %v, want 1s", cfg.Device.RequestTimeout)
	}
	if cfg.Lights.PollInterval != 500*time.Millisecond || cfg.Lights.Initial != "dirty" {
		t.Fatalf("Lights = %+v, want 500ms/dirty", cfg.Lights)
	}
	if cfg.Timer.PollInterval != 300*time.Millisecond || cfg.Timer.Duration != 5*time.Minute {
		t.Fatalf("Timer = %+v, want 300ms/5m", cfg.Timer)
	}
	wantLog, err := expandPath(defaultLogPath)
	if err != nil {
		t.Fatalf("expandPath(defaultLogPath) returned error: %v", err)
	}
	if cfg.Log.Path != wantLog {
		t.Fatalf("Log.Path = %q, want %q", cfg.Log.Path, wantLog)
	}
	if !strings.HasPrefix(cfg.Checklist.DBPath, home) {
		t.Fatalf("Checklist.DBPath = %q, want it under HOME %q", cfg.Checklist.DBPath, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
[device]
base_url = "  http://esp32.local:8080  "
request_timeout = " 2s "

[lights]
poll_interval = "250ms"
initial = " Clean "

[timer]
poll_interval = "1s"
duration = "90s"

[checklist]
db_path = "~/data/list.db"

[log]
path = "  ~/logs/hub.log  "
level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Device.BaseURL != "http://esp32.local:8080" {
		t.Fatalf("Device.BaseURL = %q", cfg.Device.BaseURL)
	}
	if cfg.Device.RequestTimeout != 2*time.Second {
		t.Fatalf("Device.RequestTimeout = %v, want 2s", cfg.Device.RequestTimeout)
	}
	if cfg.Lights.PollInterval != 250*time.Millisecond || cfg.Lights.Initial != "clean" {
		t.Fatalf("Lights = %+v", cfg.Lights)
	}
	if cfg.Timer.PollInterval != time.Second || cfg.Timer.Duration != 90*time.Second {
		t.Fatalf("Timer = %+v", cfg.Timer)
	}
	if cfg.Checklist.DBPath != filepath.Join(home, "data", "list.db") {
		t.Fatalf("Checklist.DBPath = %q", cfg.Checklist.DBPath)
	}
	if cfg.Log.Path != filepath.Join(home, "logs", "hub.log") {
		t.Fatalf("Log.Path = %q", cfg.Log.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
[device]
base_url = "10.0.0.50"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Device.BaseURL != "10.0.0.50" {
		t.Fatalf("Device.BaseURL = %q", cfg.Device.BaseURL)
	}
	if cfg.Lights.PollInterval != defaultLightsInterval || cfg.Timer.PollInterval != defaultTimerInterval {
		t.Fatalf("poll intervals changed: %v %v", cfg.Lights.PollInterval, cfg.Timer.PollInterval)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid toml", `[device`, "parse config"},
		{"bad duration", "[lights]\npoll_interval = \"soon\"", "lights.poll_interval"},
		{"zero duration", "[timer]\nduration = \"0s\"", "timer.duration"},
		{"negative timeout", "[device]\nrequest_timeout = \"-1s\"", "device.request_timeout"},
		{"bad initial", "[lights]\ninitial = \"green\"", "lights.initial"},
		{"bad level", "[log]\nlevel = \"loud\"", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want error mentioning %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
