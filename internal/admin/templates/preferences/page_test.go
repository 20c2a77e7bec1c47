package preferences

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/palette"
	adminprefs "finitefield.org/admin-console/internal/admin/preferences"
)

func TestBuildPageDataMarksActiveChoices(t *testing.T) {
	t.Parallel()

	prefs := adminprefs.Preferences{Layout: adminprefs.DefaultLayout(), Theme: adminprefs.DefaultTheme()}
	prefs.Theme.Theme = adminprefs.ThemeDark

	data := BuildPageData("/admin/preferences", "/admin/theme.css", prefs, palette.MustGenerate(prefs.Theme.Primary))

	active := 0
	for _, mode := range data.Modes {
		if mode.Active {
			active++
			require.Equal(t, "dark", mode.Value)
		}
	}
	require.Equal(t, 1, active)

	var presetActive []string
	for _, p := range data.Presets {
		if p.Active {
			presetActive = append(presetActive, p.Name)
		}
	}
	require.Equal(t, []string{palette.DefaultPreset}, presetActive)
	require.Len(t, data.Shades, len(palette.Stops))
}

func TestBuildPageDataCustomColourHasNoActivePreset(t *testing.T) {
	t.Parallel()

	prefs := adminprefs.Preferences{Layout: adminprefs.DefaultLayout(), Theme: adminprefs.DefaultTheme()}
	require.NoError(t, prefs.Theme.SetPrimaryColor("#123456"))

	data := BuildPageData("/p", "/theme.css", prefs, palette.MustGenerate("#123456"))
	for _, p := range data.Presets {
		require.False(t, p.Active, p.Name)
	}
}

func TestPanelRendersForms(t *testing.T) {
	t.Parallel()

	prefs := adminprefs.Preferences{Layout: adminprefs.DefaultLayout(), Theme: adminprefs.DefaultTheme()}
	data := BuildPageData("/admin/preferences", "/admin/theme.css", prefs, palette.MustGenerate(prefs.Theme.Primary))
	data.CSRFToken = "tok"

	var buf bytes.Buffer
	require.NoError(t, Panel(data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	var actions []string
	doc.Find("#" + PanelID + " form").Each(func(_ int, s *goquery.Selection) {
		actions = append(actions, s.AttrOr("action", ""))
		require.Equal(t, "tok", s.Find(`input[name="_csrf"]`).AttrOr("value", ""))
	})
	require.Equal(t, []string{
		"/admin/preferences/theme",
		"/admin/preferences/preset",
		"/admin/preferences/color",
		"/admin/preferences/layout",
		"/admin/preferences/reset",
	}, actions)

	require.Equal(t, "system", doc.Find(`input[name="theme"][checked]`).AttrOr("value", ""))
	require.Equal(t, len(palette.Presets()), doc.Find("[data-presets] button").Length())
	require.Equal(t, 1, doc.Find(`input[name="sidebar"][checked]`).Length())
	require.Equal(t, 0, doc.Find(`input[name="collapsed"][checked]`).Length())
	require.Equal(t, "true", doc.Find(`link#theme-css`).AttrOr("hx-swap-oob", ""))
}
