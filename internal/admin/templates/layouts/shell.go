// Package layouts holds the page shells every console page renders into.
package layouts

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	"finitefield.org/admin-console/internal/admin/templates/partials"
)

// HTMXScript is the htmx build loaded by every page.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.3"

// Page describes the chrome around a page body.
type Page struct {
	Title       string
	AppTitle    string
	Heading     string
	Nav         partials.Nav
	Breadcrumbs []navigation.Breadcrumb
	Layout      preferences.LayoutConfig
	Theme       preferences.ThemeConfig
}

// Shell renders a full document with sidebar, topbar and breadcrumbs.
func Shell(page Page, body templ.Component) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		head(ctx, b, page.Title, page.Theme, page.Layout)

		shellClass := "app-shell"
		if page.Layout.Sidebar.Collapsed {
			shellClass += " sidebar-collapsed"
		}
		if page.Layout.Sidebar.Overlay {
			shellClass += " sidebar-overlay"
		}
		b.Open("div", shellClass, "data-shell", "")
		if page.Layout.Sidebar.Enabled {
			b.Render(ctx, partials.Sidebar(page.Nav))
		}

		b.Open("div", "app-main")
		b.Open("header", "topbar flex items-center justify-between")
		b.Open("div", "flex items-center gap-3")
		if page.Layout.Sidebar.Enabled {
			b.Open("button", "icon-button",
				"type", "button",
				"title", "Toggle sidebar",
				"data-sidebar-toggle", "",
				"hx-post", helpers.URL(ctx, "/preferences/sidebar"),
				"hx-swap", "none",
			)
			b.Icon("pi pi-bars")
			b.Element("span", "sr-only", "Toggle sidebar")
			b.Close("button")
		}
		b.Raw("<a")
		b.Href(helpers.BasePath(ctx))
		b.Attr("class", "brand text-lg font-semibold")
		b.Raw(">")
		b.Text(page.AppTitle)
		b.Raw("</a>")
		b.Close("div")
		b.Render(ctx, partials.TopbarActions())
		b.Close("header")

		b.Render(ctx, partials.Breadcrumbs(page.Breadcrumbs, page.Nav.BasePath))
		b.Open("main", "content", "id", "main-content")
		if page.Heading != "" {
			b.Element("h1", "page-title text-2xl font-semibold", page.Heading)
		}
		b.Render(ctx, body)
		b.Close("main")
		b.Close("div")
		b.Close("div")
		b.Raw("</body></html>")
	})
}

// Bare renders a centred document without navigation, used by sign-in pages.
func Bare(title string, theme preferences.ThemeConfig, body templ.Component) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		head(ctx, b, title, theme, preferences.DefaultLayout())
		b.Open("main", "bare flex min-h-screen items-center justify-center", "id", "main-content")
		b.Render(ctx, body)
		b.Close("main")
		b.Raw("</body></html>")
	})
}

func head(ctx context.Context, b *helpers.Writer, title string, theme preferences.ThemeConfig, layout preferences.LayoutConfig) {
	csrf := middleware.CSRFTokenFromContext(ctx)

	b.Raw("<!DOCTYPE html><html")
	b.Attr("lang", "en")
	b.Attr("data-theme", string(theme.Theme))
	if theme.IsDark {
		b.Attr("class", "dark")
	}
	b.Raw("><head>")
	b.Raw(`<meta charset="utf-8">`)
	b.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.Raw(`<meta http-equiv="Accept-CH" content="Sec-CH-Prefers-Color-Scheme">`)
	b.Element("title", "", title)
	if csrf != "" {
		b.Raw(`<meta name="csrf-token"`)
		b.Attr("content", csrf)
		b.Raw(">")
	}
	b.Raw(`<link rel="stylesheet" href="/public/static/admin.css">`)
	b.Raw(`<link rel="stylesheet" id="theme-css" data-theme-css`)
	b.Href(helpers.URL(ctx, "/theme.css"))
	b.Raw(">")
	b.Raw("<script defer")
	b.Attr("src", HTMXScript)
	b.Raw("></script>")
	b.Raw("</head><body")
	class := "min-h-screen bg-surface text-body"
	if !layout.Animations {
		class += " no-animations"
	}
	if !layout.Ripple {
		class += " no-ripple"
	}
	b.Attr("class", class)
	if csrf != "" {
		headers, _ := json.Marshal(map[string]string{"X-CSRF-Token": csrf})
		b.Attr("hx-headers", string(headers))
	}
	b.Raw(">")
}
