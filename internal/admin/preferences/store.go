package preferences

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	defaultLayoutCookie = "admin_layout"
	defaultThemeCookie  = "admin_theme"
	defaultMaxAge       = 365 * 24 * time.Hour
)

// ErrInvalidConfig indicates the store was built without keys.
var ErrInvalidConfig = errors.New("preferences: invalid config")

// Preferences is the resolved pair of configs for one request.
type Preferences struct {
	Layout LayoutConfig
	Theme  ThemeConfig
	// ThemeStored is false when the browser had no theme cookie.
	ThemeStored bool
}

// StoreConfig controls the preference cookies.
type StoreConfig struct {
	HashKey      []byte
	BlockKey     []byte
	LayoutCookie string
	ThemeCookie  string
	CookiePath   string
	Secure       bool
	MaxAge       time.Duration
}

// Store persists preferences in signed cookies.
type Store struct {
	cfg   StoreConfig
	codec *securecookie.SecureCookie
}

// NewStore constructs a cookie store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if len(cfg.HashKey) == 0 {
		return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
	}
	if cfg.LayoutCookie == "" {
		cfg.LayoutCookie = defaultLayoutCookie
	}
	if cfg.ThemeCookie == "" {
		cfg.ThemeCookie = defaultThemeCookie
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))
	return &Store{cfg: cfg, codec: codec}, nil
}

// Load resolves the preferences for r. Missing or unreadable cookies fall
// back to defaults; a decode failure is reported alongside the usable
// result. Without a stored theme a dark client hint selects the dark theme.
func (s *Store) Load(r *http.Request) (Preferences, error) {
	var errs []error

	var layout *StoredLayout
	if c, err := r.Cookie(s.cfg.LayoutCookie); err == nil {
		var stored StoredLayout
		if err := s.codec.Decode(s.cfg.LayoutCookie, c.Value, &stored); err != nil {
			errs = append(errs, fmt.Errorf("preferences: decode layout: %w", err))
		} else {
			layout = &stored
		}
	}

	var theme *StoredTheme
	if c, err := r.Cookie(s.cfg.ThemeCookie); err == nil {
		var stored StoredTheme
		if err := s.codec.Decode(s.cfg.ThemeCookie, c.Value, &stored); err != nil {
			errs = append(errs, fmt.Errorf("preferences: decode theme: %w", err))
		} else {
			theme = &stored
		}
	}

	prefersDark := PrefersDark(r)
	prefs := Preferences{
		Layout:      MergeLayout(layout),
		Theme:       MergeTheme(theme),
		ThemeStored: theme != nil,
	}
	if !prefs.ThemeStored && prefersDark {
		prefs.Theme.Theme = ThemeDark
	}
	prefs.Theme.ApplyTheme(prefersDark)
	return prefs, errors.Join(errs...)
}

// Save writes both cookies.
func (s *Store) Save(w http.ResponseWriter, prefs Preferences) error {
	if err := s.write(w, s.cfg.LayoutCookie, prefs.Layout); err != nil {
		return err
	}
	return s.write(w, s.cfg.ThemeCookie, prefs.Theme)
}

// Clear expires both cookies.
func (s *Store) Clear(w http.ResponseWriter) {
	for _, name := range []string{s.cfg.LayoutCookie, s.cfg.ThemeCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     s.cfg.CookiePath,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   s.cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (s *Store) write(w http.ResponseWriter, name string, value any) error {
	encoded, err := s.codec.Encode(name, value)
	if err != nil {
		return fmt.Errorf("preferences: encode %s: %w", name, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     s.cfg.CookiePath,
		MaxAge:   int(s.cfg.MaxAge.Seconds()),
		Secure:   s.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PrefersDark reads the Sec-CH-Prefers-Color-Scheme client hint.
func PrefersDark(r *http.Request) bool {
	if r == nil {
		return false
	}
	hint := strings.Trim(strings.TrimSpace(r.Header.Get("Sec-CH-Prefers-Color-Scheme")), `"`)
	return strings.EqualFold(hint, "dark")
}
