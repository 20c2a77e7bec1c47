package httpserver_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/palette"
	"finitefield.org/admin-console/internal/admin/routes"
	"finitefield.org/admin-console/internal/admin/testutil"
)

func htmxHeader() http.Header {
	h := http.Header{}
	h.Set("HX-Request", "true")
	return h
}

func TestDashboardRedirectsWithoutAuth(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.Get("/admin/dashboard", nil)
	resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login?next=%2Fadmin%2Fdashboard", resp.Header.Get("Location"))
}

func TestLoginPageRendersForm(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.Get("/admin/login?status=logged_out", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)

	require.Equal(t, "Sign in - Admin Console", doc.Find("title").Text())
	require.Equal(t, "You have been signed out.", doc.Find("[data-login-message]").Text())
	require.Equal(t, "/admin/login", doc.Find("[data-login] form").AttrOr("action", ""))
	require.Equal(t, 1, doc.Find(`input[name="username"]`).Length())
	require.NotEmpty(t, doc.Find(`input[name="_csrf"]`).AttrOr("value", ""))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.PostForm("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, "Invalid username or password.", doc.Find("[data-login-error]").Text())
	require.Equal(t, "admin", doc.Find(`input[name="username"]`).AttrOr("value", ""))
}

func TestLoginRedirectsToNext(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts, "/admin")

	form := url.Values{
		"username": {"user"},
		"password": {"user123"},
		"next":     {"/admin/products/list"},
	}
	resp := c.PostForm("/admin/login", form, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/products/list", resp.Header.Get("Location"))

	evil := url.Values{
		"username": {"user"},
		"password": {"user123"},
		"next":     {"https://evil.example/admin"},
	}
	resp = testutil.NewClient(t, ts, "/admin").PostForm("/admin/login", evil, nil)
	resp.Body.Close()
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestLoginWithOTP(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithAccounts(account.NewStaticService(account.DemoUsers(true), time.Hour)))
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.PostForm("/admin/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/login/otp", resp.Header.Get("Location"))

	resp = c.Get("/admin/dashboard", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode, "pending otp must not grant access")

	resp = c.Get("/admin/login/otp", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, 1, doc.Find("[data-otp]").Length())

	resp = c.PostForm("/admin/login/otp", url.Values{"code": {"000000"}}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	doc = testutil.ParseResponse(t, resp)
	require.Equal(t, "The verification code is not valid.", doc.Find("[data-login-error]").Text())

	resp = c.PostForm("/admin/login/otp", url.Values{"code": {account.DemoOTPCode}}, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = c.Get("/admin/dashboard", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboardRendersForAuthenticatedUser(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))

	resp = c.Get("/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)

	require.Equal(t, "Dashboard - Admin Console", doc.Find("title").First().Text())
	require.Equal(t, 1, doc.Find("[data-dashboard]").Length())
	require.Equal(t, 4, doc.Find("[data-kpi]").Length())

	keys := testutil.MenuKeys(doc)
	require.Contains(t, keys, "Products")
	require.NotContains(t, keys, "Settings", "settings needs settings.manage")
	require.NotContains(t, keys, "Analytics", "analytics needs analytics.view")
	require.Equal(t, 0, doc.Find(`[data-user-menu-item="admin-panel"]`).Length())
	require.Equal(t, "test", doc.Find("[data-environment-badge]").AttrOr("data-environment-badge", ""))
}

func TestAdminSeesRestrictedSections(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "admin", "admin123")

	resp := c.Get("/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)

	require.Contains(t, testutil.MenuKeys(doc), "Settings")
	require.Equal(t, 1, doc.Find(`[data-user-menu-item="admin-panel"]`).Length())
}

func TestContainerRedirectsToFirstRenderableChild(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/products", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/products/list", resp.Header.Get("Location"))

	resp = c.Get("/admin/products/categories", nil)
	resp.Body.Close()
	require.Equal(t, "/admin/products/categories/add", resp.Header.Get("Location"))
}

func TestPageRendersBreadcrumbs(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/orders/42", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)

	require.Equal(t, "Order Detail - Admin Console", doc.Find("title").Text())
	require.Equal(t, 1, doc.Find("[data-coming-soon]").Length())
	require.Contains(t, doc.Find("[data-breadcrumbs]").Text(), "Orders")
	require.Contains(t, doc.Find("[data-breadcrumbs]").Text(), "Order Detail")
}

func TestRestrictedRouteIsForbidden(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/settings/general", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, 1, doc.Find(`[data-error-status="403"]`).Length())

	resp = c.Get("/admin/admin", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, 1, doc.Find(`[data-error-status="404"]`).Length())
}

func TestGoNavigatesSmartly(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/go?to="+url.QueryEscape("/products/inventory"), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/products/inventory/overview", resp.Header.Get("Location"))

	resp = c.Get("/admin/go?to="+url.QueryEscape("/admin/help"), nil)
	resp.Body.Close()
	require.Equal(t, "/admin/help", resp.Header.Get("Location"))

	resp = c.Get("/admin/go?to="+url.QueryEscape("https://evil.example/"), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.Get("/admin/go?to="+url.QueryEscape("/analytics"), nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "user cannot reach analytics")
}

func TestNavToggleReturnsSidebarFragment(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/nav/toggle?key=Products", nil, htmxHeader())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, 1, doc.Find("[data-sidebar]").Length())
	require.Equal(t, 0, doc.Find("[data-shell]").Length(), "fragment must not include the page chrome")

	resp = c.PostForm("/admin/nav/toggle?key=Help", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.PostForm("/admin/nav/toggle?key=Missing", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNavClickOnLeafRedirects(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/nav/click?key=Help&floating=1", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "/admin/help", resp.Header.Get("HX-Redirect"))
}

func TestNavClickOnContainerLeafOpensFirstPage(t *testing.T) {
	t.Parallel()

	tree := &routes.Tree{Routes: []*routes.Node{{
		Path: "/", Name: "Layout", Layout: true,
		Children: []*routes.Node{
			{Path: "tools", Name: "Tools", Title: "Tools", Children: []*routes.Node{
				{Path: "run", Name: "ToolsRun", Component: "page"},
			}},
			{Path: "groups", Name: "Groups", Title: "Groups", Children: []*routes.Node{
				{Path: "hidden-only", Name: "HiddenOnly", Title: "Hidden", Hidden: true, Component: "page"},
			}},
		},
	}}}
	ts := testutil.NewServer(t, testutil.WithRoutes(tree))
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/nav/click?key=Tools", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "/admin/tools/run", resp.Header.Get("HX-Redirect"))

	resp = c.Get("/admin/tools", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/tools/run", resp.Header.Get("Location"))

	resp = c.PostForm("/admin/nav/click?key=Groups", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "a group whose pages are all hidden has nowhere to go")
}

func TestUnsafeRequestsNeedCSRFToken(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/preferences/sidebar", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NotEmpty(t, c.CSRFToken())
}

func TestThemeCSSIsPublic(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.Get("/admin/theme.css", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	body := string(testutil.ReadBody(t, resp))
	require.Contains(t, body, ":root {")
	require.Contains(t, body, "--primary-500:")
	require.Contains(t, body, "color-scheme: light;")
}

func TestPreferencesPresetChangesThemeCSS(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	var preset palette.Preset
	for _, p := range palette.Presets() {
		if p.Name != palette.DefaultPreset {
			preset = p
			break
		}
	}
	require.NotEmpty(t, preset.Name)

	resp := c.PostForm("/admin/preferences/preset", url.Values{"name": {preset.Name}}, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = c.Get("/admin/theme.css", nil)
	body := string(testutil.ReadBody(t, resp))
	for _, shade := range preset.Palette {
		if shade.Stop == 500 {
			require.Contains(t, body, "--primary-500: "+shade.Hex+";")
		}
	}
}

func TestPreferencesRejectInvalidColor(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/preferences/color", url.Values{"color": {"not-a-colour"}}, htmxHeader())
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.NotEmpty(t, doc.Find("[data-preferences-error]").Text())

	resp = c.PostForm("/admin/preferences/color", url.Values{"color": {"#3366ff"}}, htmxHeader())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = testutil.ParseResponse(t, resp)
	require.Equal(t, "true", doc.Find("link#theme-css").AttrOr("hx-swap-oob", ""))
}

func TestPreferencesThemeToggleRefreshes(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/preferences/theme?toggle=1", nil, htmxHeader())
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("HX-Refresh"))

	resp = c.Get("/admin/theme.css", nil)
	require.Contains(t, string(testutil.ReadBody(t, resp)), "color-scheme: dark;")
}

func TestNotificationsBulkActionMarksRead(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/notifications?status=unread", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	id, ok := doc.Find("[data-notification-id]").First().Attr("data-notification-id")
	require.True(t, ok, "seeded inbox should contain unread notifications")

	form := url.Values{"ids": {id}, "return": {"/admin/notifications?status=unread"}}
	resp = c.PostForm("/admin/notifications/read", form, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/notifications?status=unread", resp.Header.Get("Location"))

	resp = c.Get("/admin/notifications?status=unread", nil)
	doc = testutil.ParseResponse(t, resp)
	require.Equal(t, 0, doc.Find(`[data-notification-id="`+id+`"]`).Length())

	resp = c.PostForm("/admin/notifications/explode", url.Values{"ids": {id}}, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotificationsBadgeNeedsHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.Get("/admin/notifications/badge", htmxHeader())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseResponse(t, resp)
	require.Equal(t, 1, doc.Find("[data-notifications-badge]").Length())

	resp = c.Get("/admin/notifications/badge", nil)
	resp.Body.Close()
	require.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.Login(t, ts, "user", "user123")

	resp := c.PostForm("/admin/logout", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/login?status=logged_out", resp.Header.Get("Location"))

	resp = c.Get("/admin/dashboard", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestStaticAssetsAndMetrics(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithMetrics(middleware.NewMetrics()))
	c := testutil.NewClient(t, ts, "/admin")

	resp := c.Get("/public/static/admin.css", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.Get("/admin/theme.css", nil)
	resp.Body.Close()

	resp = c.Get("/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(testutil.ReadBody(t, resp)), "admin_http_requests_total")
}
