package ui

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	"finitefield.org/admin-console/internal/admin/templates/partials"
)

// NavToggle opens or closes a menu group and returns the refreshed sidebar.
func (h *Handlers) NavToggle(w http.ResponseWriter, r *http.Request) {
	h.handleNavClick(w, r, true)
}

// NavClick handles a click on any menu entry. Groups toggle; leaves send the
// browser to their route and close the floating menu.
func (h *Handlers) NavClick(w http.ResponseWriter, r *http.Request) {
	h.handleNavClick(w, r, false)
}

func (h *Handlers) handleNavClick(w http.ResponseWriter, r *http.Request, groupsOnly bool) {
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "nav: build menu failed", err)
		return
	}

	q := r.URL.Query()
	item, ok := navigation.FindItem(v.items, strings.TrimSpace(q.Get("key")))
	if !ok {
		http.Error(w, "unknown menu item", http.StatusNotFound)
		return
	}
	if groupsOnly && !item.HasChildren() {
		http.Error(w, "menu item is not a group", http.StatusBadRequest)
		return
	}

	if location := v.origin; location != "" {
		v.state.UpdateForLocation(location)
	}

	var dest string
	nav := navigation.NavigatorFunc(func(ctx context.Context, path string) error {
		resolved, err := v.resolver.NavigateSmart(ctx, h.pageNavigator(v), path)
		if err != nil {
			return err
		}
		dest = resolved
		return nil
	})
	collapsed := flag(q.Get("collapsed"))
	floating := flag(q.Get("floating"))
	if err := v.state.HandleClick(r.Context(), item, item.HasChildren(), collapsed, floating, nav); err != nil {
		v.persist()
		http.Error(w, "navigation failed", http.StatusNotFound)
		return
	}
	v.persist()

	if dest != "" {
		redirect(w, r, helpers.JoinBase(v.base, dest), http.StatusSeeOther)
		return
	}
	sidebar := v.nav()
	sidebar.Collapsed = collapsed
	templ.Handler(partials.Sidebar(sidebar)).ServeHTTP(w, r)
}

func flag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
