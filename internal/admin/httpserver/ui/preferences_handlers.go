package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/logging"
	"finitefield.org/admin-console/internal/admin/palette"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	preferencestpl "finitefield.org/admin-console/internal/admin/templates/preferences"
)

const preferencesPath = "/preferences"

// preferencesPanel builds the settings panel for the current preferences.
func (h *Handlers) preferencesPanel(r *http.Request, v *view, flash, errMsg string) templ.Component {
	shades, err := v.prefs.Theme.ResolvePalette()
	if err != nil {
		logging.FromContext(r.Context()).Warn("preferences: palette failed", zap.Error(err))
		shades = palette.MustGenerate(preferences.DefaultTheme().Primary)
	}
	data := preferencestpl.BuildPageData(
		helpers.JoinBase(v.base, preferencesPath),
		helpers.JoinBase(v.base, "/theme.css"),
		v.prefs,
		shades,
	)
	data.CSRFToken = custommw.CSRFTokenFromContext(r.Context())
	data.Flash = flash
	data.Error = errMsg
	return preferencestpl.Panel(data)
}

// PreferencesTheme sets the colour scheme from the theme field, or flips
// between light and dark when toggle=1.
func (h *Handlers) PreferencesTheme(w http.ResponseWriter, r *http.Request) {
	h.updatePreferences(w, r, func(prefs *preferences.Preferences) (bool, error) {
		prefersDark := preferences.PrefersDark(r)
		if flag(r.URL.Query().Get("toggle")) || flag(r.PostFormValue("toggle")) {
			prefs.Theme.ToggleTheme(prefersDark)
			return true, nil
		}
		theme, err := preferences.ParseTheme(r.PostFormValue("theme"))
		if err != nil {
			return false, err
		}
		return true, prefs.Theme.SetTheme(theme, prefersDark)
	})
}

// PreferencesPreset switches to a named colour preset.
func (h *Handlers) PreferencesPreset(w http.ResponseWriter, r *http.Request) {
	h.updatePreferences(w, r, func(prefs *preferences.Preferences) (bool, error) {
		return false, prefs.Theme.SetPresetColor(r.PostFormValue("name"))
	})
}

// PreferencesColor switches to a custom primary colour.
func (h *Handlers) PreferencesColor(w http.ResponseWriter, r *http.Request) {
	h.updatePreferences(w, r, func(prefs *preferences.Preferences) (bool, error) {
		return false, prefs.Theme.SetPrimaryColor(r.PostFormValue("color"))
	})
}

// PreferencesLayout stores the layout checkboxes.
func (h *Handlers) PreferencesLayout(w http.ResponseWriter, r *http.Request) {
	h.updatePreferences(w, r, func(prefs *preferences.Preferences) (bool, error) {
		prefs.Layout.Sidebar.Enabled = flag(r.PostFormValue("sidebar"))
		prefs.Layout.Sidebar.Collapsed = flag(r.PostFormValue("collapsed"))
		prefs.Layout.Sidebar.Overlay = flag(r.PostFormValue("overlay"))
		prefs.Layout.Animations = flag(r.PostFormValue("animations"))
		prefs.Layout.Ripple = flag(r.PostFormValue("ripple"))
		return true, nil
	})
}

// PreferencesSidebar collapses or expands the sidebar.
func (h *Handlers) PreferencesSidebar(w http.ResponseWriter, r *http.Request) {
	h.updatePreferences(w, r, func(prefs *preferences.Preferences) (bool, error) {
		prefs.Layout.ToggleSidebar()
		return true, nil
	})
}

// PreferencesReset drops the stored preferences.
func (h *Handlers) PreferencesReset(w http.ResponseWriter, r *http.Request) {
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "preferences: build menu failed", err)
		return
	}
	h.prefs.Clear(w)
	v.prefs = preferences.Preferences{Layout: preferences.DefaultLayout(), Theme: preferences.DefaultTheme()}
	if h.defaultPreset != "" {
		_ = v.prefs.Theme.SetPresetColor(h.defaultPreset)
	}
	v.prefs.Theme.ApplyTheme(preferences.PrefersDark(r))
	h.preferencesResponse(w, r, v, true, "Preferences were reset.", "")
}

// updatePreferences applies mutate and stores the result. mutate reports
// whether the whole page must be refreshed to show the change.
func (h *Handlers) updatePreferences(w http.ResponseWriter, r *http.Request, mutate func(*preferences.Preferences) (bool, error)) {
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "preferences: build menu failed", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	next := v.prefs
	refresh, err := mutate(&next)
	if err != nil {
		logging.FromContext(r.Context()).Info("preferences: rejected update", zap.Error(err))
		h.preferencesResponse(w, r, v, false, "", rejectionMessage(err))
		return
	}
	if err := h.prefs.Save(w, next); err != nil {
		h.serverError(w, r, "preferences: save failed", err)
		return
	}
	v.prefs = next
	h.preferencesResponse(w, r, v, refresh, "Preferences saved.", "")
}

func (h *Handlers) preferencesResponse(w http.ResponseWriter, r *http.Request, v *view, refresh bool, flash, errMsg string) {
	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusUnprocessableEntity
	}
	if !custommw.IsHTMXRequest(r.Context()) {
		if errMsg != "" {
			http.Error(w, errMsg, status)
			return
		}
		http.Redirect(w, r, h.returnTo(r, v), http.StatusSeeOther)
		return
	}
	if refresh && errMsg == "" {
		custommw.Refresh(w)
		return
	}
	templ.Handler(h.preferencesPanel(r, v, flash, errMsg), templ.WithStatus(status)).ServeHTTP(w, r)
}

// returnTo sends plain form posts back to the page they came from.
func (h *Handlers) returnTo(r *http.Request, v *view) string {
	if location := v.origin; location != "" {
		if _, _, ok := h.routes.Match(location); ok {
			return helpers.JoinBase(v.base, location)
		}
	}
	return helpers.JoinBase(v.base, preferencesPath)
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, palette.ErrInvalidColorFormat):
		return "Enter a colour as a hex value such as #10b981."
	case errors.Is(err, preferences.ErrInvalidTheme):
		return "Choose light, dark or system."
	default:
		return "That setting is not available."
	}
}

// ThemeCSS serves the primary palette of the current preferences as CSS
// custom properties.
func (h *Handlers) ThemeCSS(w http.ResponseWriter, r *http.Request) {
	prefs := h.loadPreferences(r)
	shades, err := prefs.Theme.ResolvePalette()
	if err != nil {
		logging.FromContext(r.Context()).Warn("theme: palette failed", zap.Error(err))
		shades = palette.MustGenerate(preferences.DefaultTheme().Primary)
	}
	if prefs.Theme.ColorType == preferences.ColorCustom {
		h.metrics.PaletteGenerated()
	}

	scheme := "light"
	if prefs.Theme.IsDark {
		scheme = "dark"
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	fmt.Fprintf(w, ":root {\n  color-scheme: %s;\n", scheme)
	for _, line := range strings.Split(strings.TrimSpace(palette.CSSVariables(shades, "primary")), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprint(w, "}\n")
}
