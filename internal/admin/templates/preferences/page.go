package preferences

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// Panel renders the preferences panel. It doubles as the htmx fragment and
// carries an out-of-band refresh of the theme stylesheet link.
func Panel(data PageData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("section", "preferences space-y-6", "id", PanelID, "data-preferences", "")
		if data.Flash != "" {
			b.Element("p", "alert alert-success", data.Flash, "role", "status")
		}
		if data.Error != "" {
			b.Element("p", "alert alert-danger", data.Error, "role", "alert", "data-preferences-error", "")
		}

		form(b, data, "/theme", "Theme", func() {
			for _, mode := range data.Modes {
				b.Open("label", "flex items-center gap-2")
				b.Raw(`<input type="radio" name="theme"`)
				b.Attr("value", mode.Value)
				b.AttrIf("checked", mode.Active)
				b.Raw(">")
				b.Text(mode.Label)
				b.Close("label")
			}
		})

		form(b, data, "/preset", "Preset colour", func() {
			b.Open("div", "swatches grid grid-cols-6 gap-2", "data-presets", "")
			for _, p := range data.Presets {
				class := "swatch"
				if p.Active {
					class += " is-active"
				}
				b.Open("button", class,
					"type", "submit",
					"name", "name",
					"value", p.Name,
					"title", p.Label,
					"style", "background-color: "+p.Hex,
					"aria-pressed", strconv.FormatBool(p.Active),
				)
				b.Element("span", "sr-only", p.Label)
				b.Close("button")
			}
			b.Close("div")
		})

		form(b, data, "/color", "Custom colour", func() {
			b.Raw(`<input type="color" name="color"`)
			b.Attr("value", data.Theme.Primary)
			b.Raw(">")
			b.Element("button", "button", "Apply", "type", "submit")
		})

		form(b, data, "/layout", "Layout", func() {
			checkbox(b, "sidebar", "Show sidebar", data.Layout.Sidebar.Enabled)
			checkbox(b, "collapsed", "Collapse sidebar", data.Layout.Sidebar.Collapsed)
			checkbox(b, "overlay", "Sidebar overlays content", data.Layout.Sidebar.Overlay)
			checkbox(b, "animations", "Animations", data.Layout.Animations)
			checkbox(b, "ripple", "Ripple effect", data.Layout.Ripple)
			b.Element("button", "button", "Save", "type", "submit")
		})

		b.Open("div", "palette-preview flex", "data-palette-preview", "")
		for _, shade := range data.Shades {
			b.Element("span", "shade", strconv.Itoa(shade.Stop),
				"title", shade.Hex,
				"style", "background-color: "+shade.Hex,
			)
		}
		b.Close("div")

		form(b, data, "/reset", "", func() {
			b.Element("button", "button button-danger", "Reset to defaults", "type", "submit")
		})
		b.Close("section")

		b.Raw(`<link rel="stylesheet" id="theme-css" data-theme-css hx-swap-oob="true"`)
		b.Href(data.ThemeCSS + "?v=" + data.Theme.Primary)
		b.Raw(">")
	})
}

func form(b *helpers.Writer, data PageData, suffix, legend string, body func()) {
	action := data.Endpoint + suffix
	b.Open("form", "space-y-2",
		"method", "post",
		"action", action,
		"hx-post", action,
		"hx-target", "#"+PanelID,
		"hx-swap", "outerHTML",
	)
	b.Raw(`<input type="hidden" name="_csrf"`)
	b.Attr("value", data.CSRFToken)
	b.Raw(">")
	if legend != "" {
		b.Element("h2", "text-sm font-semibold", legend)
	}
	body()
	b.Close("form")
}

func checkbox(b *helpers.Writer, name, label string, on bool) {
	b.Open("label", "flex items-center gap-2")
	b.Raw(`<input type="checkbox" value="1"`)
	b.Attr("name", name)
	b.AttrIf("checked", on)
	b.Raw(">")
	b.Text(label)
	b.Close("label")
}
