package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"soundstage/internal/util"
)

// Backend names accepted by audio.backend
const (
	BackendPortAudio = "portaudio"
	BackendSpeaker   = "speaker"
	BackendNone      = "none"
)

// Config represents the main configuration
type Config struct {
	Audio   AudioConfig   `yaml:"audio"`
	Music   MusicConfig   `yaml:"music"`
	Logging LoggingConfig `yaml:"logging"`
}

// AudioConfig contains output graph and device configuration
type AudioConfig struct {
	Enabled         bool    `yaml:"enabled"`           // false starts the engine muted
	Backend         string  `yaml:"backend"`           // portaudio, speaker, none
	SampleRate      int     `yaml:"sample_rate"`       // Hz
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // device callback size
	MasterVolume    float64 `yaml:"master_volume"`     // 0.0-1.0
	Strict          bool    `yaml:"strict"`            // log every call made before initialize
	Seed            int64   `yaml:"seed"`              // noise seed, 0 means time based
}

// MusicConfig contains background bed configuration
type MusicConfig struct {
	BedSeconds    float64                `yaml:"bed_seconds"`
	MaxBedSeconds float64                `yaml:"max_bed_seconds"`
	Level         float64                `yaml:"level"`       // session gain relative to master
	FadeInMs      int                    `yaml:"fade_in_ms"`  // 0 starts at full level
	FadeOutMs     int                    `yaml:"fade_out_ms"` // 0 hard-stops the previous bed
	Themes        map[string]ThemeConfig `yaml:"themes"`
}

// LoggingConfig contains logger configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // optional, logs to console and file when set
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Enabled:         true,
			Backend:         BackendPortAudio,
			SampleRate:      44100,
			FramesPerBuffer: 1024,
			MasterVolume:    0.7,
			Strict:          false,
			Seed:            0,
		},
		Music: MusicConfig{
			BedSeconds:    45,
			MaxBedSeconds: 300,
			Level:         0.3,
			FadeInMs:      2000,
			FadeOutMs:     300,
			Themes:        DefaultThemes(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Normalize clamps out-of-range values and fills zero values with defaults
func (c *Config) Normalize() {
	def := DefaultConfig()

	switch c.Audio.Backend {
	case BackendPortAudio, BackendSpeaker, BackendNone:
	default:
		c.Audio.Backend = def.Audio.Backend
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.FramesPerBuffer <= 0 {
		c.Audio.FramesPerBuffer = def.Audio.FramesPerBuffer
	}
	c.Audio.MasterVolume = util.Clamp(c.Audio.MasterVolume, 0, 1)

	if c.Music.BedSeconds <= 0 {
		c.Music.BedSeconds = def.Music.BedSeconds
	}
	if c.Music.MaxBedSeconds <= 0 {
		c.Music.MaxBedSeconds = def.Music.MaxBedSeconds
	}
	if c.Music.Level <= 0 {
		c.Music.Level = def.Music.Level
	}
	c.Music.Level = util.Clamp(c.Music.Level, 0, 1)
	if c.Music.FadeInMs < 0 {
		c.Music.FadeInMs = 0
	}
	if c.Music.FadeOutMs < 0 {
		c.Music.FadeOutMs = 0
	}
	if c.Music.Themes == nil {
		c.Music.Themes = map[string]ThemeConfig{}
	}
	for name, theme := range DefaultThemes() {
		if _, ok := c.Music.Themes[name]; !ok {
			c.Music.Themes[name] = theme
		}
	}
	for name, theme := range c.Music.Themes {
		c.Music.Themes[name] = theme.normalized()
	}

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

// LoadConfig loads the configuration from a file.
// On error the returned config still holds usable defaults.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		config = DefaultConfig()
		return config, fmt.Errorf("error parsing config: %w", err)
	}

	config.Normalize()
	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
