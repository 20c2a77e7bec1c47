package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/account"
	custommw "finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/httpserver/ui"
	"finitefield.org/admin-console/internal/admin/navigation"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/rbac"
	"finitefield.org/admin-console/internal/admin/routes"
	appsession "finitefield.org/admin-console/internal/admin/session"
	"finitefield.org/admin-console/public"
)

var timeNow = time.Now

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	LoginPath        string
	Environment      string
	AppTitle         string
	DefaultPreset    string
	IDTokenLogin     bool
	RequestTimeout   time.Duration
	Routes           *routes.Tree
	Menu             *navigation.Model
	Sessions         *appsession.Manager
	Preferences      *preferences.Store
	Accounts         account.Service
	Notifications    adminnotifications.Service
	Logger           *zap.Logger
	Metrics          *custommw.Metrics
	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

// NewHandler builds the router without binding it to a listener.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Routes == nil {
		return nil, errors.New("httpserver: route tree is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session manager is required")
	}
	if cfg.Preferences == nil {
		return nil, errors.New("httpserver: preferences store is required")
	}
	if cfg.Accounts == nil {
		return nil, errors.New("httpserver: account service is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(custommw.RequestID())
	router.Use(chimw.RealIP)
	router.Use(custommw.InjectLogger(cfg.Logger))
	router.Use(custommw.RequestLogger())
	router.Use(custommw.Recoverer())
	router.Use(cfg.Metrics.Middleware())
	router.Use(chimw.Timeout(timeout))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("embed static: %w", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)
	if basePath != "/" && !hasSafePrefix(loginPath, basePath) {
		return nil, fmt.Errorf("httpserver: login path %q must live under %q", loginPath, basePath)
	}

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNonEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	appTitle := firstNonEmpty(cfg.AppTitle, ui.DefaultAppTitle)
	uiHandlers := ui.NewHandlers(ui.Dependencies{
		Routes:        cfg.Routes,
		Menu:          cfg.Menu,
		Notifications: cfg.Notifications,
		Preferences:   cfg.Preferences,
		Metrics:       cfg.Metrics,
		AppTitle:      appTitle,
		DefaultPreset: cfg.DefaultPreset,
	})
	authHandlers := newAuthHandlers(cfg.Accounts, cfg.Preferences, basePath, loginPath, appTitle, cfg.IDTokenLogin)

	mountAdminRoutes(router, basePath, routeOptions{
		UI:            uiHandlers,
		Auth:          authHandlers,
		Authenticator: custommw.AccountAuthenticator(cfg.Accounts),
		Sessions:      cfg.Sessions,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		CSRF:          csrfCfg,
	})
	return router, nil
}

type routeOptions struct {
	UI            *ui.Handlers
	Auth          *authHandlers
	Authenticator custommw.Authenticator
	Sessions      custommw.SessionStore
	LoginPath     string
	Environment   string
	CSRF          custommw.CSRFConfig
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	loginRel := relativeTo(base, opts.LoginPath)

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/theme.css", opts.UI.ThemeCSS)

		r.Get(loginRel, opts.Auth.LoginForm)
		r.Post(loginRel, opts.Auth.LoginSubmit)
		r.Get(loginRel+"/otp", opts.Auth.OTPForm)
		r.Post(loginRel+"/otp", opts.Auth.OTPSubmit)
		r.Post("/logout", opts.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get("/go", opts.UI.Go)
			r.Post("/nav/toggle", opts.UI.NavToggle)
			r.Post("/nav/click", opts.UI.NavClick)

			r.Route("/preferences", func(r chi.Router) {
				r.Post("/theme", opts.UI.PreferencesTheme)
				r.Post("/preset", opts.UI.PreferencesPreset)
				r.Post("/color", opts.UI.PreferencesColor)
				r.Post("/layout", opts.UI.PreferencesLayout)
				r.Post("/sidebar", opts.UI.PreferencesSidebar)
				r.Post("/reset", opts.UI.PreferencesReset)
			})

			r.Group(func(r chi.Router) {
				r.Use(custommw.RequireCapability(rbac.CapNotificationsView))
				RegisterFragment(r, "/notifications/badge", opts.UI.NotificationsBadge)
				r.Post("/notifications/read-all", opts.UI.NotificationsReadAll)
				r.Post("/notifications/{action}", opts.UI.NotificationsAction)
			})

			r.Get("/", opts.UI.Page)
			r.Get("/*", opts.UI.Page)
		})
	})
}

// relativeTo strips base from an absolute path so it can be mounted inside
// the base route.
func relativeTo(base, p string) string {
	if base == "/" {
		return p
	}
	rel := strings.TrimPrefix(p, base)
	if rel == "" {
		return "/"
	}
	return rel
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
