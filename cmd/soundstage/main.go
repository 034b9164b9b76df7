package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"soundstage/internal/logger"
	"soundstage/internal/util"
	"soundstage/pkg/config"
	"soundstage/pkg/engine"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	renderPath := flag.String("render", "", "Render offline to this WAV file and exit")
	script := flag.String("script", "both", "What to render: music, launch or both")
	theme := flag.String("theme", "dark", "Background music theme")
	seconds := flag.Float64("seconds", 8, "Length of the offline render in seconds")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this file and exit")
	flag.Parse()

	cfg, cfgErr := config.LoadConfig(*configPath)
	log := newLogger(cfg.Logging, *logLevel)
	defer log.Close()

	switch {
	case cfgErr == nil:
		log.Debugf("Loaded configuration from %s", *configPath)
	case util.FileExists(*configPath):
		log.Warnf("Using default configuration: %v", cfgErr)
	default:
		log.Infof("No configuration at %s, using defaults", *configPath)
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(cfg, *writeConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		log.Infof("Wrote configuration to %s", *writeConfig)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *renderPath != "" {
		job := renderJob{
			Path:    *renderPath,
			Script:  *script,
			Theme:   *theme,
			Seconds: *seconds,
		}
		if err := job.run(ctx, cfg, log); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
		log.Infof("Wrote %s", *renderPath)
		return
	}

	log.Info("Starting soundstage, type 'help' for commands")
	eng := engine.New(cfg, log)
	defer eng.Close()
	if err := checkInteractive(eng); err != nil {
		log.Errorf("%v", err)
		return
	}

	sh := newShell(ctx, eng, os.Stdout)
	if err := sh.run(os.Stdin); err != nil {
		log.Errorf("Input error: %v", err)
	}
}

// newLogger builds the console logger, teeing to a file when configured
func newLogger(cfg config.LoggingConfig, override string) *logger.Logger {
	level := cfg.Level
	if override != "" {
		level = override
	}
	if cfg.File == "" {
		return logger.NewLogger(level)
	}

	log, err := logger.NewMultiLogger(level, cfg.File)
	if err != nil {
		log = logger.NewLogger(level)
		log.Warnf("Logging to console only: %v", err)
	}
	return log
}
