package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finitefield.org/admin-console/internal/admin/account"
)

type mockAuthenticator struct {
	token string
	user  *User
	err   error
}

func (m *mockAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	if token != m.token {
		return nil, ErrUnauthorized
	}
	return m.user, m.err
}

func TestAuthMiddleware(t *testing.T) {
	auth := &mockAuthenticator{
		token: "valid",
		user:  &User{UserInfo: account.UserInfo{ID: "user-1", Role: "admin"}, Token: "valid"},
	}

	handler := HTMX()(Auth(auth, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			t.Fatalf("expected user in context")
		}
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("missing token redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rr.Code)
		}
		if location := rr.Header().Get("Location"); location != "/login?next=%2Fadmin" {
			t.Fatalf("expected redirect to /login with next, got %s", location)
		}
	})

	t.Run("htmx unauthorized returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if rr.Header().Get("HX-Redirect") != "/login" {
			t.Fatalf("expected HX-Redirect header to /login")
		}
	})

	t.Run("valid token passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer valid")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("token from cookie passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: "valid"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("expired token triggers refresh header", func(t *testing.T) {
		auth.err = NewAuthError(ReasonTokenExpired, errors.New("expired"))
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer valid")
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if rr.Header().Get("HX-Refresh") != "true" {
			t.Fatalf("expected HX-Refresh header")
		}
		auth.err = nil
	})

	t.Run("post does not carry next", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/notifications", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rr.Code)
		}
		if location := rr.Header().Get("Location"); location != "/login" {
			t.Fatalf("expected bare login redirect, got %s", location)
		}
	})
}

func TestCSRFAcceptsFormField(t *testing.T) {
	mw := CSRF(CSRFConfig{CookieName: "csrf"})
	form := url.Values{"_csrf": {"token"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}

func TestCSRFMiddleware(t *testing.T) {
	mw := CSRF(CSRFConfig{CookieName: "csrf", HeaderName: "X-CSRF-Token"})

	t.Run("issues cookie on GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := CSRFTokenFromContext(r.Context())
			if token == "" {
				t.Fatalf("expected token in context")
			}
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == "csrf" && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected csrf cookie to be set")
		}
	})

	t.Run("rejects unsafe request without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("allows unsafe request with matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "csrf", Value: "token"})
		req.Header.Set("X-CSRF-Token", "token")
		rr := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})
}

func TestHTMXMiddleware(t *testing.T) {
	base := HTMX()

	t.Run("detects htmx", func(t *testing.T) {
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				t.Fatalf("expected htmx request")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/admin/fragments", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("RequireHTMX blocks non-htmx", func(t *testing.T) {
		handler := base(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
		req := httptest.NewRequest(http.MethodGet, "/admin/fragments", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestNoStoreMiddleware(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control: %s", got)
	}
	if got := rr.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("unexpected Pragma: %s", got)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequestInfoResolvesLocations(t *testing.T) {
	tests := []struct {
		name         string
		base         string
		path         string
		origin       string
		wantLocation string
		wantOrigin   string
	}{
		{name: "below base", base: "/admin", path: "/admin/orders/42", origin: "http://example.com/admin/products/list?page=2", wantLocation: "/orders/42", wantOrigin: "/products/list"},
		{name: "base itself", base: "/admin/", path: "/admin", wantLocation: "/"},
		{name: "origin outside base", base: "/admin", path: "/admin/nav/click", origin: "http://example.com/shop/cart", wantLocation: "/nav/click"},
		{name: "foreign host", base: "/admin", path: "/admin", origin: "https://evil.example/admin/help", wantLocation: "/"},
		{name: "root mount", base: "", path: "/help/", origin: "/dashboard", wantLocation: "/help", wantOrigin: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info *RequestInfo
			handler := RequestInfoMiddleware(tt.base)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				info, _ = RequestInfoFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "http://example.com"+tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("HX-Current-URL", tt.origin)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if info == nil {
				t.Fatalf("request info missing")
			}
			if info.Location != tt.wantLocation {
				t.Fatalf("Location = %q, want %q", info.Location, tt.wantLocation)
			}
			if info.Origin != tt.wantOrigin {
				t.Fatalf("Origin = %q, want %q", info.Origin, tt.wantOrigin)
			}
		})
	}
}

func TestRequestInfoFallsBackToReferer(t *testing.T) {
	var origin string
	handler := RequestInfoMiddleware("/admin")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		origin = OriginFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "http://example.com/admin/preferences/theme", nil)
	req.Header.Set("Referer", "http://example.com/admin/help")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if origin != "/help" {
		t.Fatalf("origin = %q, want /help", origin)
	}
}

func TestNewDeployment(t *testing.T) {
	tests := []struct {
		label string
		want  Deployment
	}{
		{label: "", want: Deployment{Name: "Development", Short: "DEV"}},
		{label: "Production", want: Deployment{Name: "Production", Short: "PRD", Production: true}},
		{label: " stg ", want: Deployment{Name: "stg", Short: "STG"}},
		{label: "qa-east", want: Deployment{Name: "qa-east", Short: "QA-"}},
	}
	for _, tt := range tests {
		if got := NewDeployment(tt.label); got != tt.want {
			t.Fatalf("NewDeployment(%q) = %+v, want %+v", tt.label, got, tt.want)
		}
	}
}

func TestHTMXRedirectAndTargets(t *testing.T) {
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HTMXInfoFromContext(r.Context()).Targets("notifications-table") {
			t.Fatalf("expected notifications-table target")
		}
		Redirect(w, r, "/admin/help", http.StatusSeeOther)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/notifications", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "notifications-table")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("HX-Redirect"); got != "/admin/help" {
		t.Fatalf("HX-Redirect = %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "HX-Request" {
		t.Fatalf("Vary = %q", got)
	}

	plain := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if HTMXInfoFromContext(r.Context()).Targets("notifications-table") {
			t.Fatalf("plain requests target nothing")
		}
		Redirect(w, r, "/admin/help", http.StatusSeeOther)
	}))
	rr = httptest.NewRecorder()
	plain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/notifications", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin/help" {
		t.Fatalf("expected 303 to /admin/help, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}
