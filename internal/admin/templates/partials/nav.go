package partials

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// SidebarID is the DOM id swapped by the navigation fragments.
const SidebarID = "sidebar"

// Nav is the sidebar payload for one request. Items are already filtered for
// the current user.
type Nav struct {
	Items     []navigation.MenuItem
	State     *navigation.State
	Collapsed bool
	BasePath  string
}

func (n Nav) state() *navigation.State {
	if n.State == nil {
		return navigation.NewState(n.Items)
	}
	return n.State
}

func (n Nav) endpoint(action, key string, floating bool) string {
	q := url.Values{}
	q.Set("key", key)
	if floating {
		q.Set("floating", "1")
	}
	if n.Collapsed {
		q.Set("collapsed", "1")
	}
	return helpers.JoinBase(n.BasePath, "/nav/"+action) + "?" + q.Encode()
}

// Sidebar renders the expanded navigation tree, or the floating icon rail
// when the sidebar is collapsed.
func Sidebar(nav Nav) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		class := "sidebar"
		if nav.Collapsed {
			class = "sidebar sidebar-collapsed"
		}
		b.Open("nav", class,
			"id", SidebarID,
			"data-sidebar", "",
			"data-collapsed", strconv.FormatBool(nav.Collapsed),
			"aria-label", "Main navigation",
		)
		if nav.Collapsed {
			renderFloating(b, nav)
		} else {
			b.Open("ul", "menu", "role", "tree")
			for _, item := range nav.Items {
				renderItem(b, nav, item, 0)
			}
			b.Close("ul")
		}
		b.Close("nav")
	})
}

func renderItem(b *helpers.Writer, nav Nav, item navigation.MenuItem, depth int) {
	state := nav.state()
	if item.HasChildren() {
		expanded := state.IsExpanded(item.Key)
		parentActive := state.IsParentActive(item.Key)
		b.Open("li", "menu-group", "data-menu-key", item.Key, "data-depth", strconv.Itoa(depth), "role", "treeitem")
		b.Raw("<button")
		b.Attr("type", "button")
		b.Attr("class", helpers.Classes("menu-toggle", helpers.NavClass(false), activeClass(parentActive)))
		b.Attr("hx-post", nav.endpoint("toggle", item.Key, false))
		b.Attr("hx-target", "#"+SidebarID)
		b.Attr("hx-swap", "outerHTML")
		b.Attr("aria-expanded", strconv.FormatBool(expanded))
		if parentActive {
			b.Attr("data-parent-active", "true")
		}
		b.Raw(">")
		b.Icon(item.Icon)
		b.Element("span", "menu-label", item.Label)
		b.Open("i", chevron(expanded), "aria-hidden", "true")
		b.Close("i")
		b.Raw("</button>")
		if expanded {
			b.Open("ul", "menu-children", "role", "group")
			for _, child := range item.Children {
				renderItem(b, nav, child, depth+1)
			}
			b.Close("ul")
		}
		b.Close("li")
		return
	}

	active := state.IsActive(item.Key)
	b.Open("li", "menu-leaf", "data-menu-key", item.Key, "data-depth", strconv.Itoa(depth), "role", "treeitem")
	b.Raw("<a")
	b.Href(helpers.JoinBase(nav.BasePath, item.Route))
	b.Attr("class", helpers.NavClass(active))
	if active {
		b.Attr("aria-current", "page")
	}
	b.Raw(">")
	b.Icon(item.Icon)
	b.Element("span", "menu-label", item.Label)
	b.Raw("</a>")
	b.Close("li")
}

// renderFloating draws the icon rail used while the sidebar is collapsed.
// Groups open a popover list tracked by the floating expand set.
func renderFloating(b *helpers.Writer, nav Nav) {
	state := nav.state()
	b.Open("ul", "menu-rail", "data-floating-menu", "")
	for _, item := range nav.Items {
		b.Open("li", "rail-item", "data-menu-key", item.Key)
		if !item.HasChildren() {
			b.Raw("<a")
			b.Href(helpers.JoinBase(nav.BasePath, item.Route))
			b.Attr("class", helpers.Classes("rail-link", activeClass(state.IsActive(item.Key))))
			b.Attr("title", item.Label)
			if state.IsActive(item.Key) {
				b.Attr("aria-current", "page")
			}
			b.Raw(">")
			b.Icon(item.Icon)
			b.Element("span", "sr-only", item.Label)
			b.Raw("</a>")
			b.Close("li")
			continue
		}
		open := state.IsFloatingExpanded(item.Key)
		b.Raw("<button")
		b.Attr("type", "button")
		b.Attr("class", helpers.Classes("rail-link", activeClass(state.IsParentActive(item.Key))))
		b.Attr("title", item.Label)
		b.Attr("hx-post", nav.endpoint("toggle", item.Key, true))
		b.Attr("hx-target", "#"+SidebarID)
		b.Attr("hx-swap", "outerHTML")
		b.Attr("aria-expanded", strconv.FormatBool(open))
		b.Raw(">")
		b.Icon(item.Icon)
		b.Element("span", "sr-only", item.Label)
		b.Raw("</button>")
		if open {
			b.Open("div", "floating-panel", "data-floating-panel", item.Key)
			b.Element("p", "floating-title", item.Label)
			renderFloatingChildren(b, nav, item.Children)
			b.Close("div")
		}
		b.Close("li")
	}
	b.Close("ul")
}

func renderFloatingChildren(b *helpers.Writer, nav Nav, items []navigation.MenuItem) {
	state := nav.state()
	b.Open("ul", "floating-list")
	for _, item := range items {
		b.Open("li", "", "data-menu-key", item.Key)
		b.Raw("<button")
		b.Attr("type", "button")
		b.Attr("class", helpers.NavClass(state.IsActive(item.Key)))
		b.Attr("hx-post", nav.endpoint("click", item.Key, true))
		b.Attr("hx-target", "#"+SidebarID)
		b.Attr("hx-swap", "outerHTML")
		if item.HasChildren() {
			b.Attr("aria-expanded", strconv.FormatBool(state.IsFloatingExpanded(item.Key)))
		}
		b.Raw(">")
		b.Icon(item.Icon)
		b.Element("span", "menu-label", item.Label)
		b.Raw("</button>")
		if item.HasChildren() && state.IsFloatingExpanded(item.Key) {
			renderFloatingChildren(b, nav, item.Children)
		}
		b.Close("li")
	}
	b.Close("ul")
}

func activeClass(on bool) string {
	if on {
		return "is-active"
	}
	return ""
}

func chevron(open bool) string {
	if open {
		return "pi pi-chevron-down menu-chevron"
	}
	return "pi pi-chevron-right menu-chevron"
}
