package partials

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/rbac"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// TopbarActions renders the environment badge, theme toggle, notification
// badge and user menu for the signed-in user.
func TopbarActions() templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		user, signedIn := middleware.UserFromContext(ctx)

		b.Open("div", "topbar-actions flex items-center gap-3")
		renderEnvironmentBadge(b, middleware.DeploymentFromContext(ctx))

		b.Raw("<button")
		b.Attr("type", "button")
		b.Attr("class", "icon-button")
		b.Attr("title", "Toggle theme")
		b.Attr("data-theme-toggle", "")
		b.Attr("hx-post", helpers.URL(ctx, "/preferences/theme")+"?toggle=1")
		b.Attr("hx-swap", "none")
		b.Raw(">")
		b.Icon("pi pi-moon")
		b.Element("span", "sr-only", "Toggle theme")
		b.Raw("</button>")

		if helpers.HasCapability(ctx, string(rbac.CapNotificationsView)) {
			b.Open("div", "notifications-root",
				"data-notifications-root", "",
				"hx-get", helpers.URL(ctx, "/notifications/badge"),
				"hx-trigger", "load, every 60s",
				"hx-swap", "innerHTML",
			)
			b.Raw("<a")
			b.Href(helpers.URL(ctx, "/notifications"))
			b.Attr("class", "icon-button")
			b.Attr("title", "Notifications")
			b.Raw(">")
			b.Icon("pi pi-bell")
			b.Raw("</a>")
			b.Close("div")
		}

		if signedIn {
			renderUserMenu(ctx, b, user)
		}
		b.Close("div")
	})
}

func renderEnvironmentBadge(b *helpers.Writer, env middleware.Deployment) {
	class := "environment-badge"
	if env.Production {
		class += " environment-badge-production"
	}
	b.Open("div", class, "data-environment-badge", env.Name)
	b.Element("span", "", env.Short, "aria-hidden", "true")
	b.Element("span", "sr-only", env.Name+" environment")
	b.Close("div")
}

func renderUserMenu(ctx context.Context, b *helpers.Writer, user *middleware.User) {
	b.Open("details", "user-menu", "data-user-menu", "")
	b.Open("summary", "flex items-center gap-2 cursor-pointer")
	if user.Avatar != "" {
		b.Raw("<img")
		b.Attr("src", string(templ.URL(user.Avatar)))
		b.Attr("alt", "")
		b.Attr("class", "avatar")
		b.Raw(">")
	} else {
		b.Element("span", "avatar avatar-initial", initial(user.DisplayName()), "aria-hidden", "true")
	}
	b.Open("span", "flex flex-col")
	b.Element("span", "truncate text-sm", user.DisplayName())
	if user.Role != "" {
		b.Element("span", "text-xs text-slate-500", user.Role)
	}
	b.Close("span")
	b.Close("summary")

	b.Open("ul", "user-menu-items", "role", "menu")
	for _, item := range navigation.UserMenuItems(user.Role) {
		switch {
		case item.Separator:
			b.Open("li", "divider", "role", "separator", "data-user-menu-item", item.Key)
			b.Close("li")
		case item.Action == navigation.ActionLogout:
			b.Open("li", "", "role", "none", "data-user-menu-item", item.Key)
			b.Open("form", "", "method", "post", "action", helpers.URL(ctx, "/logout"), "data-user-menu-logout", "")
			b.Raw(`<input type="hidden" name="_csrf"`)
			b.Attr("value", middleware.CSRFTokenFromContext(ctx))
			b.Raw(">")
			b.Open("button", "menu-item", "type", "submit", "role", "menuitem")
			b.Icon(item.Icon)
			b.Text(item.Label)
			b.Close("button")
			b.Close("form")
			b.Close("li")
		default:
			href := helpers.URL(ctx, item.Route)
			b.Open("li", "", "role", "none", "data-user-menu-item", item.Key)
			b.Raw("<a")
			b.Href(href)
			b.Attr("class", helpers.Classes("menu-item", activeClass(helpers.NavActive(ctx, href, false))))
			b.Attr("role", "menuitem")
			b.Raw(">")
			b.Icon(item.Icon)
			b.Text(item.Label)
			b.Raw("</a>")
			b.Close("li")
		}
	}
	b.Close("ul")
	b.Close("details")
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
