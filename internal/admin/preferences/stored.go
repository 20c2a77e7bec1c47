package preferences

// StoredSidebar is the persisted sidebar shape. Nil fields fall back to defaults.
type StoredSidebar struct {
	Enabled   *bool `json:"enabled,omitempty"`
	Collapsed *bool `json:"collapsed,omitempty"`
	Overlay   *bool `json:"overlay,omitempty"`
}

// StoredLayout is the persisted layout shape.
type StoredLayout struct {
	Sidebar    *StoredSidebar `json:"sidebar,omitempty"`
	Animations *bool          `json:"animations,omitempty"`
	Ripple     *bool          `json:"ripple,omitempty"`
}

// StoredTheme is the persisted theme shape, including values written before
// colorType existed.
type StoredTheme struct {
	Theme      *Theme     `json:"theme,omitempty"`
	Primary    *string    `json:"primary,omitempty"`
	ColorType  *ColorType `json:"colorType,omitempty"`
	PresetName *string    `json:"presetName,omitempty"`
	IsDark     *bool      `json:"isDark,omitempty"`
}

// MergeLayout overlays stored fields onto the defaults one by one.
func MergeLayout(stored *StoredLayout) LayoutConfig {
	out := DefaultLayout()
	if stored == nil {
		return out
	}
	if s := stored.Sidebar; s != nil {
		setBool(&out.Sidebar.Enabled, s.Enabled)
		setBool(&out.Sidebar.Collapsed, s.Collapsed)
		setBool(&out.Sidebar.Overlay, s.Overlay)
	}
	setBool(&out.Animations, stored.Animations)
	setBool(&out.Ripple, stored.Ripple)
	return out
}

// MigrateTheme upgrades a theme stored before colorType existed: a stored
// preset name means the colour came from a preset, otherwise it was custom.
func MigrateTheme(stored StoredTheme) StoredTheme {
	if stored.ColorType != nil && *stored.ColorType != "" {
		return stored
	}
	colorType := ColorCustom
	if stored.PresetName != nil && *stored.PresetName != "" {
		colorType = ColorPreset
	}
	stored.ColorType = &colorType
	return stored
}

// MergeTheme migrates the stored theme and overlays it onto the defaults.
// A custom colour never inherits the default preset name.
func MergeTheme(stored *StoredTheme) ThemeConfig {
	out := DefaultTheme()
	if stored == nil {
		return out
	}
	migrated := MigrateTheme(*stored)
	if migrated.Theme != nil {
		if theme, err := ParseTheme(string(*migrated.Theme)); err == nil {
			out.Theme = theme
		}
	}
	if migrated.Primary != nil && *migrated.Primary != "" {
		out.Primary = *migrated.Primary
	}
	out.ColorType = *migrated.ColorType
	if out.ColorType != ColorPreset && out.ColorType != ColorCustom {
		out.ColorType = ColorCustom
	}
	if migrated.PresetName != nil {
		out.PresetName = *migrated.PresetName
	}
	if out.ColorType == ColorCustom {
		out.PresetName = ""
	}
	setBool(&out.IsDark, migrated.IsDark)
	return out
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
