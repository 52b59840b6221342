package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/binding"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/checklist"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/config"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/device"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/prefs"
	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/ui"
)

// Options configure the kitchenhub application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/kitchenhub/prefs.toml
	DeviceURL  string // overrides device.base_url
	LogLevel   string // overrides log.level
}

// Run boots the kitchenhub TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if url := strings.TrimSpace(opts.DeviceURL); url != "" {
		cfg.Device.BaseURL = url
	}
	if lvl := strings.TrimSpace(opts.LogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}

	log, closeLog, err := logger.NewFile(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init log: %w", err)
	}
	defer func() { _ = closeLog() }()
	log.Infow("kitchenhub starting", "device", cfg.Device.BaseURL)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		log.Warnw("preferences unavailable, using defaults", "err", err)
	}

	client, err := device.NewClient(cfg.Device.BaseURL, cfg.Device.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init device client: %w", err)
	}

	lightsBinding, err := binding.Lights(cfg.Lights.Initial)
	if err != nil {
		return fmt.Errorf("init lights binding: %w", err)
	}
	timerBinding := binding.Timer()

	lights, err := StartSession(ctx, lightsBinding, client.Signal(lightsBinding.Endpoint), SessionOptions{
		PollInterval: cfg.Lights.PollInterval,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer lights.Stop()

	timer, err := StartSession(ctx, timerBinding, client.Signal(timerBinding.Endpoint), SessionOptions{
		PollInterval: cfg.Timer.PollInterval,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer timer.Stop()

	db, err := checklist.OpenDB(cfg.Checklist.DBPath)
	if err != nil {
		return fmt.Errorf("open checklist: %w", err)
	}
	defer func() { _ = db.Close() }()
	list := checklist.NewStore(checklist.NewSQLiteRepo(db), log)

	err = ui.Run(ui.Options{
		Context:       ctx,
		Lights:        lights,
		Timer:         timer,
		Checklist:     list,
		TimerDuration: cfg.Timer.Duration,
		LogPath:       cfg.Log.Path,
		ThemeName:     userPrefs.Theme,
		ViewName:      userPrefs.View,
		PrefsPath:     prefsPath,
		Logger:        log,
	})
	log.Infow("kitchenhub stopping")
	return err
}
