package dashboard

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// Index renders the dashboard body.
func Index(data PageData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("div", "dashboard space-y-8", "data-dashboard", "")

		if data.Error != "" {
			b.Element("p", "alert alert-danger", data.Error, "role", "alert", "data-dashboard-error", "")
		} else {
			b.Open("section", "grid grid-cols-4 gap-4", "data-kpis", "")
			for _, kpi := range data.KPIs {
				b.Open("a", "card kpi", "href", string(templ.URL(kpi.Href)), "data-kpi", kpi.ID)
				b.Element("span", "kpi-label text-sm", kpi.Label)
				b.Element("strong", helpers.Classes("kpi-value", helpers.BadgeClass(kpi.Tone)), kpi.Value)
				b.Close("a")
			}
			b.Close("section")

			b.Open("section", "card", "data-alerts", "")
			b.Element("h2", "text-lg font-semibold", "Needs attention")
			if len(data.Alerts) == 0 {
				b.Element("p", "text-muted", "You are all caught up.", "data-alerts-empty", "")
			} else {
				b.Open("ul", "divide-y")
				for _, alert := range data.Alerts {
					b.Open("li", "py-2", "data-alert-id", alert.ID)
					b.Element("span", helpers.BadgeClass(alert.Tone), alert.Title)
					b.Element("p", "text-sm", alert.Message)
					b.Element("time", "text-xs text-muted", alert.Relative)
					if alert.ActionURL != "" {
						label := alert.Action
						if label == "" {
							label = "Open"
						}
						b.Raw("<a")
						b.Href(alert.ActionURL)
						b.Raw(` class="link text-sm">`)
						b.Text(label)
						b.Raw("</a>")
					}
					b.Close("li")
				}
				b.Close("ul")
			}
			b.Raw("<a")
			b.Href(data.Inbox)
			b.Raw(` class="link text-sm" data-inbox-link>`)
			b.Text("View all notifications")
			b.Raw("</a>")
			b.Close("section")
		}

		b.Open("section", "grid grid-cols-3 gap-4", "data-sections", "")
		for _, section := range data.Sections {
			b.Open("a", "card section-card", "href", string(templ.URL(section.Href)), "data-section", section.Key)
			b.Icon(section.Icon)
			b.Element("h3", "font-semibold", section.Label)
			if len(section.Children) > 0 {
				b.Open("ul", "text-sm text-muted")
				for _, child := range section.Children {
					b.Element("li", "", child)
				}
				b.Close("ul")
			}
			b.Close("a")
		}
		b.Close("section")

		b.Close("div")
	})
}
