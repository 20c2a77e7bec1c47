// Package preferences renders the layout and theme settings page.
package preferences

import (
	"strings"

	"finitefield.org/admin-console/internal/admin/palette"
	adminprefs "finitefield.org/admin-console/internal/admin/preferences"
)

// PanelID is the DOM id swapped by preference fragments.
const PanelID = "preferences-panel"

// PageData drives the preferences panel.
type PageData struct {
	Endpoint  string
	ThemeCSS  string
	CSRFToken string
	Flash     string
	Error     string
	Theme     adminprefs.ThemeConfig
	Layout    adminprefs.LayoutConfig
	Modes     []ModeOption
	Presets   []PresetOption
	Shades    []palette.Shade
}

// ModeOption is one theme mode radio.
type ModeOption struct {
	Value  string
	Label  string
	Active bool
}

// PresetOption is one swatch of the preset picker.
type PresetOption struct {
	Name   string
	Label  string
	Hex    string
	Active bool
}

// BuildPageData assembles the panel payload. shades is the palette currently
// rendered by the theme stylesheet.
func BuildPageData(endpoint, themeCSS string, prefs adminprefs.Preferences, shades palette.Palette) PageData {
	modes := []ModeOption{
		{Value: string(adminprefs.ThemeLight), Label: "Light"},
		{Value: string(adminprefs.ThemeDark), Label: "Dark"},
		{Value: string(adminprefs.ThemeSystem), Label: "System"},
	}
	for i := range modes {
		modes[i].Active = modes[i].Value == string(prefs.Theme.Theme)
	}

	presets := palette.Presets()
	options := make([]PresetOption, 0, len(presets))
	for _, p := range presets {
		active := prefs.Theme.ColorType == adminprefs.ColorPreset &&
			strings.EqualFold(prefs.Theme.PresetName, p.Name)
		options = append(options, PresetOption{
			Name:   p.Name,
			Label:  p.Label,
			Hex:    p.Palette.Primary(),
			Active: active,
		})
	}

	return PageData{
		Endpoint: endpoint,
		ThemeCSS: themeCSS,
		Theme:    prefs.Theme,
		Layout:   prefs.Layout,
		Modes:    modes,
		Presets:  options,
		Shades:   shades[:],
	}
}
