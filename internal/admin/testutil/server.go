package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/httpserver"
	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/preferences"
	"finitefield.org/admin-console/internal/admin/routes"
	"finitefield.org/admin-console/internal/admin/session"
)

const (
	// CSRFCookieName is the CSRF cookie used by servers built with NewServer.
	CSRFCookieName = "csrf_token"

	testHashKey  = "0123456789abcdef0123456789abcdef"
	testBlockKey = "abcdef0123456789abcdef0123456789"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithAccounts overrides the account service.
func WithAccounts(svc account.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Accounts = svc
	}
}

// WithNotifications overrides the notifications service.
func WithNotifications(svc adminnotifications.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Notifications = svc
	}
}

// WithRoutes overrides the route tree.
func WithRoutes(tree *routes.Tree) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Routes = tree
	}
}

// WithMetrics enables the prometheus registry.
func WithMetrics(m *middleware.Metrics) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Metrics = m
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		CookieName: "admin_session",
		HashKey:    []byte(testHashKey),
		BlockKey:   []byte(testBlockKey),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	prefs, err := preferences.NewStore(preferences.StoreConfig{
		HashKey:  []byte(testHashKey),
		BlockKey: []byte(testBlockKey),
	})
	if err != nil {
		t.Fatalf("preferences store: %v", err)
	}

	tree, err := routes.Default()
	if err != nil {
		t.Fatalf("default routes: %v", err)
	}

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/admin",
		Environment:    "test",
		Routes:         tree,
		Sessions:       sessions,
		Preferences:    prefs,
		Accounts:       account.NewStaticService(account.DemoUsers(false), time.Hour),
		Notifications:  adminnotifications.NewStaticService(nil),
		CSRFCookieName: CSRFCookieName,
		CSRFHeaderName: "X-CSRF-Token",
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// Client is a cookie-keeping browser stand-in that never follows redirects.
type Client struct {
	t         testing.TB
	http      *http.Client
	serverURL string
	basePath  string
}

// NewClient returns a client bound to ts whose admin routes live at basePath.
func NewClient(t testing.TB, ts *httptest.Server, basePath string) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Client{
		t: t,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		serverURL: ts.URL,
		basePath:  strings.TrimRight(basePath, "/"),
	}
}

// Login signs in through the login form and returns a client holding the
// session cookie.
func Login(t testing.TB, ts *httptest.Server, username, password string) *Client {
	t.Helper()
	c := NewClient(t, ts, "/admin")
	resp := c.PostForm("/admin/login", url.Values{"username": {username}, "password": {password}}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login as %s: status %d: %s", username, resp.StatusCode, body)
	}
	return c
}

// Get issues a GET for path with optional extra headers.
func (c *Client) Get(path string, header http.Header) *http.Response {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil, header)
}

// PostForm submits form to path, adding the CSRF token.
func (c *Client) PostForm(path string, form url.Values, header http.Header) *http.Response {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", c.CSRFToken())
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(http.MethodPost, path, strings.NewReader(form.Encode()), header)
}

// CSRFToken returns the CSRF cookie value, fetching the login page first
// when no cookie was issued yet.
func (c *Client) CSRFToken() string {
	c.t.Helper()
	if token := c.cookie(CSRFCookieName); token != "" {
		return token
	}
	resp := c.do(http.MethodGet, c.basePath+"/login?force=1", nil, nil)
	resp.Body.Close()
	token := c.cookie(CSRFCookieName)
	if token == "" {
		c.t.Fatalf("no csrf cookie issued")
	}
	return token
}

// cookie returns the named cookie visible to the admin routes.
func (c *Client) cookie(name string) string {
	u, err := url.Parse(c.serverURL + c.basePath + "/")
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) do(method, path string, body io.Reader, header http.Header) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.serverURL+path, body)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// ReadBody drains and closes resp.Body.
func ReadBody(t testing.TB, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}
