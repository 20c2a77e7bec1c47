package ui

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	custommw "finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/logging"
	"finitefield.org/admin-console/internal/admin/navigation"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/rbac"
	"finitefield.org/admin-console/internal/admin/routes"
	appsession "finitefield.org/admin-console/internal/admin/session"
	"finitefield.org/admin-console/internal/admin/templates/layouts"
	"finitefield.org/admin-console/internal/admin/templates/pages"
	"finitefield.org/admin-console/internal/admin/templates/partials"
)

// DefaultAppTitle is appended to every document title.
const DefaultAppTitle = "Admin Console"

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Routes        *routes.Tree
	Menu          *navigation.Model
	Notifications adminnotifications.Service
	Preferences   *preferences.Store
	Metrics       *custommw.Metrics
	AppTitle      string
	DefaultPreset string
	Now           func() time.Time
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	routes        *routes.Tree
	menu          *navigation.Model
	resolver      *navigation.Resolver
	notifications adminnotifications.Service
	prefs         *preferences.Store
	metrics       *custommw.Metrics
	appTitle      string
	defaultPreset string
	now           func() time.Time
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Routes == nil {
		panic("ui: route tree is required")
	}
	if deps.Preferences == nil {
		panic("ui: preferences store is required")
	}
	menu := deps.Menu
	if menu == nil {
		menu = navigation.NewModel()
	}
	notifications := deps.Notifications
	if notifications == nil {
		notifications = adminnotifications.NewStaticService(nil)
	}
	title := strings.TrimSpace(deps.AppTitle)
	if title == "" {
		title = DefaultAppTitle
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		routes:        deps.Routes,
		menu:          menu,
		resolver:      navigation.NewResolver(deps.Routes),
		notifications: notifications,
		prefs:         deps.Preferences,
		metrics:       deps.Metrics,
		appTitle:      title,
		defaultPreset: deps.DefaultPreset,
		now:           now,
	}
}

// view is the per-request state shared by pages and fragments.
type view struct {
	user     *custommw.User
	sess     *appsession.Session
	base     string
	location string
	origin   string
	items    []navigation.MenuItem
	state    *navigation.State
	resolver *navigation.Resolver
	prefs    preferences.Preferences
}

func (h *Handlers) load(r *http.Request) (*view, error) {
	ctx := r.Context()
	user, _ := custommw.UserFromContext(ctx)

	items, err := h.menu.Items(h.routes)
	if err != nil {
		return nil, err
	}
	items = navigation.FilterMenu(items, func(item navigation.MenuItem) bool {
		return capabilityAllowed(user, item.Capability)
	})

	v := &view{
		user:  user,
		base:  custommw.BasePathFromContext(ctx),
		items: items,
		prefs: h.loadPreferences(r),
	}
	if info, ok := custommw.RequestInfoFromContext(ctx); ok {
		v.location, v.origin = info.Location, info.Origin
	} else {
		v.location = custommw.AppPath(v.base, r.URL.Path)
	}
	v.resolver = h.resolver.WithFilter(func(n *routes.Node) bool {
		return capabilityAllowed(user, n.Capability)
	})
	if sess, ok := custommw.SessionFromContext(ctx); ok {
		v.sess = sess
		nav := sess.Navigation()
		v.state = navigation.RestoreState(items, nav.Expanded, nav.Floating)
	} else {
		v.state = navigation.NewState(items)
	}
	return v, nil
}

func (h *Handlers) loadPreferences(r *http.Request) preferences.Preferences {
	prefs, err := h.prefs.Load(r)
	if err != nil {
		logging.FromContext(r.Context()).Debug("preferences: ignoring unreadable cookie", zap.Error(err))
	}
	if !prefs.ThemeStored && h.defaultPreset != "" {
		if err := prefs.Theme.SetPresetColor(h.defaultPreset); err != nil {
			logging.FromContext(r.Context()).Warn("preferences: unknown default preset", zap.String("preset", h.defaultPreset))
		}
	}
	return prefs
}

// persist writes the navigation expand state back to the session.
func (v *view) persist() {
	if v.sess == nil {
		return
	}
	v.sess.SetNavigation(appsession.Navigation{
		Expanded: v.state.ExpandedKeys(),
		Floating: v.state.FloatingExpandedKeys(),
	})
}

// allowed reports whether every record of chain is open to the user.
func (v *view) allowed(chain []routes.Record) bool {
	for _, rec := range chain {
		if !capabilityAllowed(v.user, rec.Node.Capability) {
			return false
		}
	}
	return true
}

func (v *view) nav() partials.Nav {
	return partials.Nav{
		Items:     v.items,
		State:     v.state,
		Collapsed: v.prefs.Layout.Sidebar.Collapsed,
		BasePath:  v.base,
	}
}

func capabilityAllowed(user *custommw.User, capability string) bool {
	if strings.TrimSpace(capability) == "" {
		return true
	}
	return user != nil && user.Can(rbac.Capability(capability))
}

// renderShell wraps body in the full page chrome.
func (h *Handlers) renderShell(w http.ResponseWriter, r *http.Request, v *view, chain []routes.Record, location string, status int, body templ.Component) {
	heading := ""
	if len(chain) > 0 {
		heading = chain[len(chain)-1].Node.Title
	}
	page := layouts.Page{
		Title:       navigation.DocumentTitle(chain, h.appTitle),
		AppTitle:    h.appTitle,
		Heading:     heading,
		Nav:         v.nav(),
		Breadcrumbs: navigation.BuildBreadcrumbs(chain, location),
		Layout:      v.prefs.Layout,
		Theme:       v.prefs.Theme,
	}
	v.persist()
	templ.Handler(layouts.Shell(page, body), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, v *view, status int) {
	title, message := "Page not found", "The page you requested does not exist."
	if status == http.StatusForbidden {
		title, message = "Access denied", "You do not have permission to view this page."
	}
	if custommw.IsHTMXRequest(r.Context()) {
		http.Error(w, title, status)
		return
	}
	page := layouts.Page{
		Title:    title + " - " + h.appTitle,
		AppTitle: h.appTitle,
		Nav:      v.nav(),
		Layout:   v.prefs.Layout,
		Theme:    v.prefs.Theme,
	}
	templ.Handler(layouts.Shell(page, pages.Error(status, title, message)), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

var redirect = custommw.Redirect
