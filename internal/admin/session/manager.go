// Package session keeps the signed-in operator and their navigation state in
// a signed, encrypted cookie.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName       = "admin_session"
	defaultCookiePath       = "/"
	defaultLifetime         = 12 * time.Hour
	defaultRememberLifetime = 30 * 24 * time.Hour
	defaultIdleTimeout      = 30 * time.Minute
)

// ErrExpired indicates the stored session is past its idle or absolute expiry.
var ErrExpired = errors.New("session expired")

// ErrInvalidConfig indicates the manager was built with missing options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Config controls cookie encoding and lifetimes.
type Config struct {
	CookieName     string
	HashKey        []byte
	BlockKey       []byte
	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	IdleTimeout      time.Duration
	Lifetime         time.Duration
	RememberLifetime time.Duration
	Now              func() time.Time
}

// Manager loads and persists sessions.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager constructs a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = defaultCookiePath
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	if cfg.RememberLifetime <= 0 {
		cfg.RememberLifetime = defaultRememberLifetime
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	if cfg.CookieSameSite == http.SameSiteDefaultMode {
		cfg.CookieSameSite = http.SameSiteLaxMode
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.RememberLifetime.Seconds()))

	return &Manager{cfg: cfg, codec: codec, now: now}, nil
}

// Load decodes the request's session. Missing or undecodable cookies yield a
// fresh session; an expired one yields ErrExpired.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return m.New(), nil
	}

	var stored Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &stored); err != nil {
		return m.New(), nil
	}
	if stored.ID == "" {
		return m.New(), nil
	}

	sess := &Session{data: stored, cfg: &m.cfg}
	if m.expired(sess, m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// New returns an empty session.
func (m *Manager) New() *Session {
	now := m.now().UTC()
	return &Session{
		data: Data{
			ID:         mustToken(32),
			CreatedAt:  now,
			LastActive: now,
			ExpiresAt:  m.cfg.expiry(now, false),
		},
		dirty: true,
		cfg:   &m.cfg,
	}
}

// Save writes the session cookie, or clears it for destroyed sessions.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return errors.New("session: nil session")
	}
	if sess.destroyed {
		http.SetCookie(w, m.expiredCookie())
		return nil
	}

	sess.Touch(m.now())
	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
	if exp := sess.data.ExpiresAt; !exp.IsZero() {
		cookie.Expires = exp.UTC()
		if remaining := exp.Sub(m.now()); remaining > 0 {
			cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
		} else {
			cookie.MaxAge = -1
		}
	}
	http.SetCookie(w, cookie)
	return nil
}

// Destroy clears the session cookie immediately.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.expiredCookie())
}

func (m *Manager) expired(sess *Session, now time.Time) bool {
	now = now.UTC()
	if exp := sess.data.ExpiresAt; !exp.IsZero() && now.After(exp) {
		return true
	}
	last := sess.data.LastActive
	if last.IsZero() {
		last = sess.data.CreatedAt
	}
	return m.cfg.IdleTimeout > 0 && !last.IsZero() && now.Sub(last) > m.cfg.IdleTimeout
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     m.cfg.CookiePath,
		Domain:   m.cfg.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: m.cfg.CookieSameSite,
	}
}

func (cfg *Config) expiry(from time.Time, remember bool) time.Time {
	lifetime := cfg.Lifetime
	if remember {
		lifetime = cfg.RememberLifetime
	}
	if lifetime <= 0 {
		return time.Time{}
	}
	return from.UTC().Add(lifetime)
}

func mustToken(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("session: generate id: %w", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
