// Package pages holds the small generic page bodies of the console.
package pages

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// ComingSoon is the placeholder body for routes without a real screen yet.
func ComingSoon(title string) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		b.Open("section", "card text-center py-16", "data-coming-soon", "")
		b.Open("i", "pi pi-wrench text-4xl text-muted", "aria-hidden", "true")
		b.Close("i")
		b.Element("h2", "text-xl font-semibold", title)
		b.Element("p", "text-muted", "This screen is not available yet.")
		b.Raw("<a")
		b.Href(helpers.URL(ctx, "/dashboard"))
		b.Raw(` class="button">`)
		b.Text("Back to dashboard")
		b.Raw("</a>")
		b.Close("section")
	})
}

// UserMenuDemo lists the dropdown entries for the current role so they can
// be inspected outside the topbar.
func UserMenuDemo(role string, items []navigation.UserMenuItem) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		b.Open("section", "card space-y-4", "data-user-menu-demo", "")
		b.Element("p", "text-sm text-muted", "Entries for role: "+role)
		b.Open("ul", "menu w-64")
		for _, item := range items {
			if item.Separator {
				b.Open("li", "menu-separator", "role", "separator", "data-demo-item", item.Key)
				b.Close("li")
				continue
			}
			b.Open("li", "", "data-demo-item", item.Key)
			if item.Action != "" {
				b.Open("span", "menu-link", "data-action", item.Action)
			} else {
				b.Open("a", "menu-link", "href", string(templ.URL(helpers.URL(ctx, item.Route))))
			}
			b.Icon(item.Icon)
			b.Element("span", "", item.Label)
			if item.Action != "" {
				b.Close("span")
			} else {
				b.Close("a")
			}
			b.Close("li")
		}
		b.Close("ul")
		b.Close("section")
	})
}

// Error is the body of the 403 and 404 pages.
func Error(status int, title, message string) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		b.Open("section", "card text-center py-16", "data-error-status", strconv.Itoa(status))
		b.Element("p", "text-5xl font-bold text-muted", strconv.Itoa(status))
		b.Element("h2", "text-xl font-semibold", title)
		if message != "" {
			b.Element("p", "text-muted", message)
		}
		b.Raw("<a")
		b.Href(helpers.URL(ctx, "/dashboard"))
		b.Raw(` class="button">`)
		b.Text("Back to dashboard")
		b.Raw("</a>")
		b.Close("section")
	})
}
