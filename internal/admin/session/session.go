package session

import (
	"slices"
	"time"
)

// User is the signed-in operator as persisted in the cookie.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Token       string   `json:"token,omitempty"`
}

// Navigation is the persisted expand state of the sidebar and floating menu.
type Navigation struct {
	Expanded []string `json:"expanded,omitempty"`
	Floating []string `json:"floating,omitempty"`
}

// Data is the full persisted payload.
type Data struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastActive time.Time  `json:"lastActive"`
	ExpiresAt  time.Time  `json:"expiresAt,omitempty"`
	RememberMe bool       `json:"rememberMe"`
	User       *User      `json:"user,omitempty"`
	TokenUntil time.Time  `json:"tokenUntil,omitempty"`
	PendingOTP string     `json:"pendingOtp,omitempty"`
	Navigation Navigation `json:"nav"`
}

// Session is the mutable state for one request.
type Session struct {
	data      Data
	dirty     bool
	destroyed bool
	cfg       *Config
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.data.ID }

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time { return s.data.CreatedAt }

// ExpiresAt returns the absolute expiry of the cookie.
func (s *Session) ExpiresAt() time.Time { return s.data.ExpiresAt }

// RememberMe reports whether the long lifetime applies.
func (s *Session) RememberMe() bool { return s.data.RememberMe }

// SetRememberMe switches lifetimes and recomputes the expiry.
func (s *Session) SetRememberMe(remember bool) {
	if s.data.RememberMe == remember {
		return
	}
	s.data.RememberMe = remember
	s.data.ExpiresAt = s.cfg.expiry(s.data.CreatedAt, remember)
	s.dirty = true
}

// User returns the signed-in operator, if any.
func (s *Session) User() *User {
	return s.data.User
}

// SetUser stores the signed-in operator together with the backend token
// expiry. A nil user signs out.
func (s *Session) SetUser(user *User, tokenUntil time.Time) {
	if user == nil {
		s.data.User = nil
		s.data.TokenUntil = time.Time{}
		s.dirty = true
		return
	}
	cp := *user
	cp.Permissions = slices.Clone(user.Permissions)
	s.data.User = &cp
	s.data.TokenUntil = tokenUntil.UTC()
	s.data.PendingOTP = ""
	s.dirty = true
}

// TokenUntil returns when the backend token stops being valid.
func (s *Session) TokenUntil() time.Time {
	return s.data.TokenUntil
}

// LoggedIn reports whether a user is stored and their token is unexpired.
func (s *Session) LoggedIn(now time.Time) bool {
	return s.data.User != nil && !s.data.TokenUntil.IsZero() && now.Before(s.data.TokenUntil)
}

// PendingOTP returns the key of an unfinished one-time-password login.
func (s *Session) PendingOTP() string {
	return s.data.PendingOTP
}

// SetPendingOTP remembers the OTP key between the password and code steps.
func (s *Session) SetPendingOTP(key string) {
	if s.data.PendingOTP == key {
		return
	}
	s.data.PendingOTP = key
	s.dirty = true
}

// Navigation returns a copy of the stored expand state.
func (s *Session) Navigation() Navigation {
	return Navigation{
		Expanded: slices.Clone(s.data.Navigation.Expanded),
		Floating: slices.Clone(s.data.Navigation.Floating),
	}
}

// SetNavigation replaces the stored expand state.
func (s *Session) SetNavigation(nav Navigation) {
	if slices.Equal(nav.Expanded, s.data.Navigation.Expanded) && slices.Equal(nav.Floating, s.data.Navigation.Floating) {
		return
	}
	s.data.Navigation = Navigation{
		Expanded: slices.Clone(nav.Expanded),
		Floating: slices.Clone(nav.Floating),
	}
	s.dirty = true
}

// Destroy marks the session for deletion at the end of the request.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	now = now.UTC()
	if now.After(s.data.LastActive) {
		s.data.LastActive = now
		s.dirty = true
	}
}

// Dirty reports whether anything changed during this request.
func (s *Session) Dirty() bool { return s.dirty }
