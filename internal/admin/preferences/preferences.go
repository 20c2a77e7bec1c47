// Package preferences holds the per-browser layout and theme settings.
package preferences

import (
	"errors"
	"fmt"
	"strings"

	"finitefield.org/admin-console/internal/admin/palette"
)

var (
	// ErrUnknownPreset is returned when a preset name is not in the catalogue.
	ErrUnknownPreset = errors.New("preferences: unknown preset")
	// ErrInvalidTheme is returned for theme modes other than light, dark or system.
	ErrInvalidTheme = errors.New("preferences: invalid theme")
)

// Theme is the colour scheme mode.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a theme mode.
func ParseTheme(raw string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
}

// ColorType tells whether the primary colour comes from a preset.
type ColorType string

const (
	ColorPreset ColorType = "preset"
	ColorCustom ColorType = "custom"
)

// SidebarConfig controls the navigation sidebar.
type SidebarConfig struct {
	Enabled   bool `json:"enabled"`
	Collapsed bool `json:"collapsed"`
	Overlay   bool `json:"overlay"`
}

// LayoutConfig is the shell layout.
type LayoutConfig struct {
	Sidebar    SidebarConfig `json:"sidebar"`
	Animations bool          `json:"animations"`
	Ripple     bool          `json:"ripple"`
}

// ThemeConfig is the colour scheme and primary colour.
type ThemeConfig struct {
	Theme      Theme     `json:"theme"`
	Primary    string    `json:"primary"`
	ColorType  ColorType `json:"colorType"`
	PresetName string    `json:"presetName,omitempty"`
	IsDark     bool      `json:"isDark"`
}

// DefaultLayout returns the layout used when nothing is stored.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		Sidebar:    SidebarConfig{Enabled: true},
		Animations: true,
		Ripple:     true,
	}
}

// DefaultTheme returns the theme used when nothing is stored.
func DefaultTheme() ThemeConfig {
	preset, _ := palette.FindPreset(palette.DefaultPreset)
	return ThemeConfig{
		Theme:      ThemeSystem,
		Primary:    preset.Palette.Primary(),
		ColorType:  ColorPreset,
		PresetName: preset.Name,
	}
}

// ToggleSidebar flips the collapsed state.
func (l *LayoutConfig) ToggleSidebar() {
	l.Sidebar.Collapsed = !l.Sidebar.Collapsed
}

// ApplyTheme recomputes IsDark for the current mode.
func (t *ThemeConfig) ApplyTheme(prefersDark bool) {
	t.IsDark = t.Theme == ThemeDark || (t.Theme == ThemeSystem && prefersDark)
}

// SetTheme switches mode.
func (t *ThemeConfig) SetTheme(theme Theme, prefersDark bool) error {
	parsed, err := ParseTheme(string(theme))
	if err != nil {
		return err
	}
	t.Theme = parsed
	t.ApplyTheme(prefersDark)
	return nil
}

// ToggleTheme switches between explicit light and dark based on what is
// currently shown.
func (t *ThemeConfig) ToggleTheme(prefersDark bool) {
	if t.IsDark {
		t.Theme = ThemeLight
	} else {
		t.Theme = ThemeDark
	}
	t.ApplyTheme(prefersDark)
}

// SetPrimaryColor switches to a custom colour.
func (t *ThemeConfig) SetPrimaryColor(raw string) error {
	hex, err := palette.NormalizeHex(raw)
	if err != nil {
		return err
	}
	t.Primary = hex
	t.ColorType = ColorCustom
	t.PresetName = ""
	return nil
}

// SetPresetColor switches to a named preset.
func (t *ThemeConfig) SetPresetColor(name string) error {
	preset, ok := palette.FindPreset(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	t.Primary = preset.Palette.Primary()
	t.ColorType = ColorPreset
	t.PresetName = preset.Name
	return nil
}

// ResolvePalette returns the ramp to render. A preset that no longer exists
// downgrades the config to a custom colour generated from Primary; the
// change is made on t so callers can persist it.
func (t *ThemeConfig) ResolvePalette() (palette.Palette, error) {
	if t.ColorType == ColorPreset && t.PresetName != "" {
		if preset, ok := palette.FindPreset(t.PresetName); ok {
			return preset.Palette, nil
		}
		t.ColorType = ColorCustom
		t.PresetName = ""
	}
	primary := t.Primary
	if strings.TrimSpace(primary) == "" {
		primary = DefaultTheme().Primary
	}
	return palette.Generate(primary)
}
