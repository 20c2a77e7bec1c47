package profile

import (
	"context"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// Index renders the profile page body.
func Index(data PageData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("section", "card profile space-y-4", "data-profile", "")
		b.Open("div", "flex items-center gap-4")
		if data.Avatar != "" {
			b.Raw("<img")
			b.Attr("src", string(templ.URL(data.Avatar)))
			b.Attr("alt", "")
			b.Attr("class", "avatar avatar-lg")
			b.Raw(">")
		} else {
			b.Element("span", "avatar avatar-lg avatar-initial", data.Initial, "aria-hidden", "true")
		}
		b.Open("div", "")
		b.Element("h2", "text-lg font-semibold", data.DisplayName, "data-profile-name", "")
		b.Element("p", "text-sm text-slate-500", data.Email)
		b.Close("div")
		b.Close("div")

		b.Open("dl", "grid grid-cols-2 gap-2 text-sm")
		entry(b, "Username", data.Username)
		entry(b, "Role", data.Role)
		entry(b, "Status", data.Status)
		entry(b, "Signed in until", data.SessionUntil)
		if data.Remembered {
			entry(b, "Remember me", "On")
		} else {
			entry(b, "Remember me", "Off")
		}
		b.Close("dl")

		list(b, "Permissions", "data-profile-permissions", data.Permissions)
		list(b, "Capabilities", "data-profile-capabilities", data.Capabilities)
		b.Close("section")
	})
}

func entry(b *helpers.Writer, label, value string) {
	if value == "" {
		value = "-"
	}
	b.Element("dt", "text-slate-500", label)
	b.Element("dd", "font-medium", value)
}

func list(b *helpers.Writer, title, marker string, values []string) {
	b.Open("div", "", marker, "")
	b.Element("h3", "text-sm font-semibold", title)
	if len(values) == 0 {
		b.Element("p", "text-sm text-slate-500", "None")
		b.Close("div")
		return
	}
	b.Open("ul", "flex flex-wrap gap-2")
	for _, v := range values {
		b.Element("li", helpers.BadgeClass(""), v)
	}
	b.Close("ul")
	b.Close("div")
}
