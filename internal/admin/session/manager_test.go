package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:       "test_session",
		HashKey:          []byte("12345678901234567890123456789012"),
		BlockKey:         []byte("abcdefghijklmnopqrstuv0123456789"),
		IdleTimeout:      10 * time.Minute,
		Lifetime:         2 * time.Hour,
		RememberLifetime: 48 * time.Hour,
		Now:              clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, clock
}

func roundTrip(t *testing.T, mgr *Manager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	return cookie
}

func TestManager_NewSessionLifecycle(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.ID() == "" {
		t.Fatalf("expected session ID")
	}
	if !sess.CreatedAt().Equal(clock.current) {
		t.Fatalf("unexpected CreatedAt: %v", sess.CreatedAt())
	}
	if sess.LoggedIn(clock.current) {
		t.Fatalf("fresh session must not be logged in")
	}

	sess.SetPendingOTP("otp-1")
	sess.SetUser(&User{ID: "u-1", Username: "admin", Role: "admin", Permissions: []string{"*"}}, clock.current.Add(time.Hour))
	if sess.PendingOTP() != "" {
		t.Fatalf("completing login should clear the pending OTP key")
	}
	sess.SetRememberMe(true)
	sess.SetNavigation(Navigation{Expanded: []string{"Orders", "Products"}, Floating: []string{"Settings"}})

	cookie := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(5 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load existing error: %v", err)
	}
	if loaded.ID() != sess.ID() {
		t.Fatalf("expected session id to persist")
	}
	if u := loaded.User(); u == nil || u.Username != "admin" || len(u.Permissions) != 1 {
		t.Fatalf("expected user to persist, got %+v", u)
	}
	if !loaded.RememberMe() {
		t.Fatalf("expected remember-me flag")
	}
	if !loaded.LoggedIn(clock.current) {
		t.Fatalf("expected logged in session")
	}
	if loaded.LoggedIn(clock.current.Add(2 * time.Hour)) {
		t.Fatalf("expected token expiry to end the login")
	}
	nav := loaded.Navigation()
	if len(nav.Expanded) != 2 || nav.Floating[0] != "Settings" {
		t.Fatalf("unexpected navigation state: %+v", nav)
	}
}

func TestManager_IdleTimeout(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess := mgr.New()
	cookie := roundTrip(t, mgr, sess)

	clock.current = clock.current.Add(20 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	if _, err := mgr.Load(req); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "tampered"})
	sess, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if sess.User() != nil || !sess.Dirty() {
		t.Fatalf("expected a fresh session")
	}
}

func TestManager_Destroy(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess := mgr.New()
	sess.Destroy()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected session cookie cleared")
	}
}

func TestSession_SetNavigationOnlyDirtiesOnChange(t *testing.T) {
	mgr, _ := newTestManager(t)
	sess, _ := mgr.Load(httptest.NewRequest(http.MethodGet, "/admin", nil))
	sess.SetNavigation(Navigation{Expanded: []string{"Orders"}})
	cookie := roundTrip(t, mgr, sess)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	loaded, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	loaded.SetNavigation(Navigation{Expanded: []string{"Orders"}})
	if loaded.Dirty() {
		t.Fatalf("unchanged navigation must not dirty the session")
	}
}

func TestNewManagerRequiresHashKey(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
