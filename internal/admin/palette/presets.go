package palette

import "strings"

// Preset is a named, hand tuned ramp.
type Preset struct {
	Name    string
	Label   string
	Palette Palette
}

// DefaultPreset names the preset used when nothing else is configured.
const DefaultPreset = "emerald"

var presets = []Preset{
	{Name: "emerald", Label: "Emerald", Palette: ramp("#ecfdf5", "#d1fae5", "#a7f3d0", "#6ee7b7", "#34d399", "#10b981", "#059669", "#047857", "#065f46", "#064e3b", "#022c22")},
	{Name: "green", Label: "Green", Palette: ramp("#f0fdf4", "#dcfce7", "#bbf7d0", "#86efac", "#4ade80", "#22c55e", "#16a34a", "#15803d", "#166534", "#14532d", "#052e16")},
	{Name: "lime", Label: "Lime", Palette: ramp("#f7fee7", "#ecfccb", "#d9f99d", "#bef264", "#a3e635", "#84cc16", "#65a30d", "#4d7c0f", "#3f6212", "#365314", "#1a2e05")},
	{Name: "orange", Label: "Orange", Palette: ramp("#fff7ed", "#ffedd5", "#fed7aa", "#fdba74", "#fb923c", "#f97316", "#ea580c", "#c2410c", "#9a3412", "#7c2d12", "#431407")},
	{Name: "amber", Label: "Amber", Palette: ramp("#fffbeb", "#fef3c7", "#fde68a", "#fcd34d", "#fbbf24", "#f59e0b", "#d97706", "#b45309", "#92400e", "#78350f", "#451a03")},
	{Name: "yellow", Label: "Yellow", Palette: ramp("#fefce8", "#fef9c3", "#fef08a", "#fde047", "#facc15", "#eab308", "#ca8a04", "#a16207", "#854d0e", "#713f12", "#422006")},
	{Name: "teal", Label: "Teal", Palette: ramp("#f0fdfa", "#ccfbf1", "#99f6e4", "#5eead4", "#2dd4bf", "#14b8a6", "#0d9488", "#0f766e", "#115e59", "#134e4a", "#042f2e")},
	{Name: "cyan", Label: "Cyan", Palette: ramp("#ecfeff", "#cffafe", "#a5f3fc", "#67e8f9", "#22d3ee", "#06b6d4", "#0891b2", "#0e7490", "#155e75", "#164e63", "#083344")},
	{Name: "sky", Label: "Sky", Palette: ramp("#f0f9ff", "#e0f2fe", "#bae6fd", "#7dd3fc", "#38bdf8", "#0ea5e9", "#0284c7", "#0369a1", "#075985", "#0c4a6e", "#082f49")},
	{Name: "blue", Label: "Blue", Palette: ramp("#eff6ff", "#dbeafe", "#bfdbfe", "#93c5fd", "#60a5fa", "#3b82f6", "#2563eb", "#1d4ed8", "#1e40af", "#1e3a8a", "#172554")},
	{Name: "indigo", Label: "Indigo", Palette: ramp("#eef2ff", "#e0e7ff", "#c7d2fe", "#a5b4fc", "#818cf8", "#6366f1", "#4f46e5", "#4338ca", "#3730a3", "#312e81", "#1e1b4b")},
	{Name: "violet", Label: "Violet", Palette: ramp("#f5f3ff", "#ede9fe", "#ddd6fe", "#c4b5fd", "#a78bfa", "#8b5cf6", "#7c3aed", "#6d28d9", "#5b21b6", "#4c1d95", "#2e1065")},
	{Name: "purple", Label: "Purple", Palette: ramp("#faf5ff", "#f3e8ff", "#e9d5ff", "#d8b4fe", "#c084fc", "#a855f7", "#9333ea", "#7e22ce", "#6b21a8", "#581c87", "#3b0764")},
	{Name: "fuchsia", Label: "Fuchsia", Palette: ramp("#fdf4ff", "#fae8ff", "#f5d0fe", "#f0abfc", "#e879f9", "#d946ef", "#c026d3", "#a21caf", "#86198f", "#701a75", "#4a044e")},
	{Name: "pink", Label: "Pink", Palette: ramp("#fdf2f8", "#fce7f3", "#fbcfe8", "#f9a8d4", "#f472b6", "#ec4899", "#db2777", "#be185d", "#9d174d", "#831843", "#500724")},
	{Name: "rose", Label: "Rose", Palette: ramp("#fff1f2", "#ffe4e6", "#fecdd3", "#fda4af", "#fb7185", "#f43f5e", "#e11d48", "#be123c", "#9f1239", "#881337", "#4c0519")},
	{Name: "black", Label: "Black", Palette: ramp("#f5f5f5", "#e5e5e5", "#d4d4d4", "#a3a3a3", "#737373", "#404040", "#262626", "#171717", "#0f0f0f", "#000000", "#000000")},
}

// Presets returns the preset ramps in picker order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// FindPreset looks a preset up by name, ignoring case.
func FindPreset(name string) (Preset, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == key {
			return p, true
		}
	}
	return Preset{}, false
}

func ramp(hexes ...string) Palette {
	if len(hexes) != len(Stops) {
		panic("palette: preset needs one colour per stop")
	}
	var p Palette
	for i, stop := range Stops {
		p[i] = Shade{Stop: stop, Hex: hexes[i]}
	}
	return p
}
