package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Theme names the site colour scheme the background bed follows
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ErrUnknownTheme is returned for a theme name with no profile
var ErrUnknownTheme = errors.New("unknown theme")

// ThemeConfig shapes the warmth filter wrapped around the ambient bed
type ThemeConfig struct {
	LowpassHz float64 `yaml:"lowpass_hz"`
	Q         float64 `yaml:"q"`
}

// DefaultThemes returns the built-in theme profiles
func DefaultThemes() map[string]ThemeConfig {
	return map[string]ThemeConfig{
		string(ThemeDark):  {LowpassHz: 800, Q: 0.5},
		string(ThemeLight): {LowpassHz: 800, Q: 0.5},
	}
}

func (t ThemeConfig) normalized() ThemeConfig {
	if t.LowpassHz <= 0 {
		t.LowpassHz = 800
	}
	if t.Q <= 0 {
		t.Q = 0.5
	}
	return t
}

// ParseTheme normalizes a theme name; unknown names are an error
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return ThemeDark, fmt.Errorf("%w %q", ErrUnknownTheme, name)
}

// Resolve is ParseTheme that also accepts themes defined under music.themes
func (m MusicConfig) Resolve(name string) (Theme, error) {
	t, err := ParseTheme(name)
	if err == nil {
		return t, nil
	}
	if _, ok := m.Themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return Theme(strings.ToLower(strings.TrimSpace(name))), nil
	}
	return t, err
}

// Profile returns the theme's filter settings, falling back to dark
func (m MusicConfig) Profile(theme Theme) ThemeConfig {
	if p, ok := m.Themes[string(theme)]; ok {
		return p.normalized()
	}
	if p, ok := m.Themes[string(ThemeDark)]; ok {
		return p.normalized()
	}
	return DefaultThemes()[string(ThemeDark)]
}

// ThemeNames lists configured themes in sorted order
func (m MusicConfig) ThemeNames() []string {
	names := make([]string, 0, len(m.Themes))
	for name := range m.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
