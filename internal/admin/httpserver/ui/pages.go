package ui

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/logging"
	"finitefield.org/admin-console/internal/admin/navigation"
	"finitefield.org/admin-console/internal/admin/routes"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	"finitefield.org/admin-console/internal/admin/templates/pages"
)

// Page components understood by the console.
const (
	ComponentDashboard     = "dashboard"
	ComponentComingSoon    = "coming-soon"
	ComponentUserMenuDemo  = "user-menu-demo"
	ComponentNotifications = "notifications"
	ComponentPreferences   = "preferences"
	ComponentProfile       = "profile"
)

// Page renders whichever route of the tree matches the request path.
// Containers redirect to their first renderable descendant.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "page: build menu failed", err)
		return
	}

	location := v.location
	chain, _, ok := h.routes.Match(location)
	if !ok {
		h.renderError(w, r, v, http.StatusNotFound)
		return
	}
	if !v.allowed(chain) {
		h.renderError(w, r, v, http.StatusForbidden)
		return
	}

	leaf := chain[len(chain)-1].Node
	if !leaf.HasComponent() {
		target, ok := h.containerTarget(v, leaf, location)
		if !ok {
			h.renderError(w, r, v, http.StatusNotFound)
			return
		}
		redirect(w, r, helpers.JoinBase(v.base, target), http.StatusFound)
		return
	}

	v.state.UpdateForLocation(location)
	body, done := h.component(w, r, v, leaf)
	if done {
		return
	}
	h.renderShell(w, r, v, chain, location, http.StatusOK, body)
}

// containerTarget picks the page a component-less route sends the browser
// to: an explicit redirect first, then the first renderable descendant.
func (h *Handlers) containerTarget(v *view, leaf *routes.Node, location string) (string, bool) {
	if redirectTo := strings.TrimSpace(leaf.Redirect); redirectTo != "" {
		if resolved, ok := v.resolver.Resolve(redirectTo); ok {
			return resolved, true
		}
		return routes.NormalizePath(redirectTo), true
	}
	return v.resolver.Resolve(location)
}

// component returns the page body for leaf. done is true when the handler
// already answered, e.g. with an htmx fragment.
func (h *Handlers) component(w http.ResponseWriter, r *http.Request, v *view, leaf *routes.Node) (templ.Component, bool) {
	switch leaf.Component {
	case ComponentDashboard:
		return h.dashboard(r, v), false
	case ComponentNotifications:
		return h.notificationsPage(w, r, v)
	case ComponentPreferences:
		return h.preferencesPanel(r, v, "", ""), false
	case ComponentProfile:
		return h.profile(v), false
	case ComponentUserMenuDemo:
		role := ""
		if v.user != nil {
			role = v.user.Role
		}
		return pages.UserMenuDemo(role, navigation.UserMenuItems(role)), false
	default:
		return pages.ComingSoon(leaf.Title), false
	}
}

// Go performs smart navigation: ?to= names any route, containers included,
// and the browser lands on the first page the user may open below it.
func (h *Handlers) Go(w http.ResponseWriter, r *http.Request) {
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "go: build menu failed", err)
		return
	}

	target, ok := sanitizeAppTarget(v.base, r.URL.Query().Get("to"))
	if !ok {
		h.renderError(w, r, v, http.StatusNotFound)
		return
	}

	dest, err := v.resolver.NavigateSmart(r.Context(), h.pageNavigator(v), target)
	if err != nil {
		logging.FromContext(r.Context()).Info("go: navigation failed", zap.String("target", target), zap.Error(err))
		h.renderError(w, r, v, http.StatusNotFound)
		return
	}
	redirect(w, r, helpers.JoinBase(v.base, dest), http.StatusFound)
}

// pageNavigator accepts paths that render a page the user may open.
func (h *Handlers) pageNavigator(v *view) navigation.Navigator {
	return navigation.NavigatorFunc(func(_ context.Context, path string) error {
		chain, _, ok := h.routes.Match(path)
		if !ok {
			return fmt.Errorf("no route matches %s", path)
		}
		if !chain[len(chain)-1].Node.HasComponent() {
			return fmt.Errorf("%s does not render a page", path)
		}
		if !v.allowed(chain) {
			return fmt.Errorf("%s is not permitted", path)
		}
		return nil
	})
}

// sanitizeAppTarget accepts a local application path, optionally prefixed
// with the base path.
func sanitizeAppTarget(base, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return "", false
	}
	if strings.Contains(parsed.Path, "\\") || strings.HasPrefix(parsed.Path, "//") {
		return "", false
	}
	return helpers.AppPath(base, parsed.Path), true
}
