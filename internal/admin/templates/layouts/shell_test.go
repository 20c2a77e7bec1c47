package layouts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	"finitefield.org/admin-console/internal/admin/templates/partials"
)

func requestContext(t *testing.T) context.Context {
	t.Helper()

	var ctx context.Context
	handler := middleware.RequestInfoMiddleware("/admin")(middleware.CSRF(middleware.CSRFConfig{})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.NotNil(t, ctx)
	return ctx
}

func TestShellRendersChrome(t *testing.T) {
	t.Parallel()

	items := []navigation.MenuItem{{Key: "Dashboard", Label: "Dashboard", Route: "/dashboard"}}
	state := navigation.NewState(items)
	state.UpdateForLocation("/dashboard")

	theme := preferences.DefaultTheme()
	theme.IsDark = true
	page := Page{
		Title:       "Dashboard - Admin Console",
		AppTitle:    "Admin Console",
		Heading:     "Dashboard",
		Nav:         partials.Nav{Items: items, State: state, BasePath: "/admin"},
		Breadcrumbs: []navigation.Breadcrumb{{Label: "Dashboard", Path: "/dashboard"}},
		Layout:      preferences.DefaultLayout(),
		Theme:       theme,
	}

	var buf bytes.Buffer
	require.NoError(t, Shell(page, helpers.TextComponent("body text")).Render(requestContext(t), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, "Dashboard - Admin Console", doc.Find("title").Text())
	require.Equal(t, "dark", doc.Find("html").AttrOr("class", ""))
	require.Equal(t, "/admin/theme.css", doc.Find("link[data-theme-css]").AttrOr("href", ""))
	require.NotEmpty(t, doc.Find(`meta[name="csrf-token"]`).AttrOr("content", ""))
	require.Contains(t, doc.Find("body").AttrOr("hx-headers", ""), "X-CSRF-Token")
	require.Equal(t, 1, doc.Find("nav#sidebar").Length())
	require.Equal(t, "Dashboard", doc.Find("h1").Text())
	require.Contains(t, doc.Find("#main-content").Text(), "body text")
}

func TestShellWithoutSidebar(t *testing.T) {
	t.Parallel()

	layout := preferences.DefaultLayout()
	layout.Sidebar.Enabled = false
	layout.Animations = false

	var buf bytes.Buffer
	require.NoError(t, Shell(Page{Title: "x", Layout: layout, Theme: preferences.DefaultTheme()}, nil).Render(requestContext(t), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, 0, doc.Find("nav#sidebar").Length())
	require.Equal(t, 0, doc.Find("[data-sidebar-toggle]").Length())
	require.Contains(t, doc.Find("body").AttrOr("class", ""), "no-animations")
}
