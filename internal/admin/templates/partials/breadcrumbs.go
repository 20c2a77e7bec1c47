package partials

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// Breadcrumbs renders the trail above the page heading. The last crumb is
// the current page and is not linked.
func Breadcrumbs(crumbs []navigation.Breadcrumb, basePath string) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		if len(crumbs) == 0 {
			return
		}
		b.Open("nav", "breadcrumbs", "aria-label", "Breadcrumb", "data-breadcrumbs", "")
		b.Open("ol", "flex items-center gap-2 text-sm text-slate-500")
		for i, crumb := range crumbs {
			last := i == len(crumbs)-1
			b.Open("li", "breadcrumb-item")
			if i > 0 {
				b.Open("span", "breadcrumb-sep", "aria-hidden", "true")
				b.Text("/")
				b.Close("span")
			}
			if last {
				b.Open("span", "breadcrumb-current", "aria-current", "page")
			} else {
				b.Raw("<a")
				b.Href(helpers.JoinBase(basePath, crumb.Path))
				b.Attr("class", "breadcrumb-link")
				b.Raw(">")
			}
			b.Icon(crumb.Icon)
			b.Text(crumb.Label)
			if last {
				b.Close("span")
			} else {
				b.Close("a")
			}
			b.Close("li")
		}
		b.Close("ol")
		b.Close("nav")
	})
}
