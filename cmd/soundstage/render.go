package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"soundstage/internal/logger"
	"soundstage/internal/util"
	"soundstage/pkg/config"
	"soundstage/pkg/engine"
)

// renderJob renders a script offline to a WAV file
type renderJob struct {
	Path    string
	Script  string
	Theme   string
	Seconds float64
}

func (j renderJob) run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	music, launch := false, false
	switch j.Script {
	case "music":
		music = true
	case "launch":
		launch = true
	case "both":
		music, launch = true, true
	default:
		return fmt.Errorf("unknown script %q (want music, launch or both)", j.Script)
	}
	if j.Seconds <= 0 {
		return fmt.Errorf("render length must be positive, got %v", j.Seconds)
	}

	// Offline renders ignore the device and the mute setting
	cfg.Audio.Backend = config.BackendNone
	cfg.Audio.Enabled = true

	clock := engine.NewManualClock(time.Unix(0, 0))
	eng := engine.New(cfg, log, engine.WithScheduler(clock))
	defer eng.Close()

	eng.Initialize(ctx)
	if !eng.IsInitialized() {
		return fmt.Errorf("engine did not initialize: %w", eng.LastError())
	}
	if music {
		eng.PlayBackgroundMusic(j.Theme)
	}
	if launch {
		eng.PlayRocketLaunchSequence()
	}

	frames, err := eng.Render(time.Duration(j.Seconds * float64(time.Second)))
	if err != nil {
		return err
	}
	if err := eng.LastError(); err != nil {
		return err
	}

	if err := util.CreateDirIfNotExist(filepath.Dir(j.Path)); err != nil {
		return err
	}
	f, err := os.Create(j.Path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := engine.WriteWAV(f, cfg.Audio.SampleRate, frames); err != nil {
		return err
	}
	return f.Close()
}
