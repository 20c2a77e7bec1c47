// Package account signs operators in against a backend and resolves the
// current user for a bearer token.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"finitefield.org/admin-console/internal/admin/rbac"
)

var (
	// ErrInvalidCredentials is returned when the username or password is wrong.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrOTPRequired is returned when a second factor is pending or was rejected.
	ErrOTPRequired = errors.New("account: one-time password required")
	// ErrUnauthorized is returned when a token is missing, unknown or expired.
	ErrUnauthorized = errors.New("account: unauthorized")
	// ErrUnsupported is returned by backends that do not implement an operation.
	ErrUnsupported = errors.New("account: operation not supported")
)

// Service authenticates operators.
type Service interface {
	// Login checks credentials. The result either carries a session or asks
	// for a one-time password keyed by OTPKey.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	// VerifyOTP completes a pending second factor.
	VerifyOTP(ctx context.Context, otpKey, code string) (Session, error)
	// CurrentUser resolves the operator behind token.
	CurrentUser(ctx context.Context, token string) (UserInfo, error)
	// Logout revokes token.
	Logout(ctx context.Context, token string) error
}

// ID is a user identifier. Backends send either JSON numbers or strings.
type ID string

// UnmarshalJSON accepts both number and string identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("account: decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// UserInfo describes the signed-in operator.
type UserInfo struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Status      string   `json:"status"`
	Avatar      string   `json:"avatar,omitempty"`
	Permissions []string `json:"permissions"`
}

// DisplayName prefers the full name, then the username, then the email.
func (u UserInfo) DisplayName() string {
	for _, candidate := range []string{u.Name, u.Username, u.Email} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return string(u.ID)
}

// Subject returns the rbac view of the user.
func (u UserInfo) Subject() rbac.Subject {
	var roles []string
	if u.Role != "" {
		roles = []string{u.Role}
	}
	return rbac.Subject{Roles: roles, Permissions: u.Permissions}
}

// Credentials is a login attempt. IDToken is used by identity-provider
// backends in place of a password.
type Credentials struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	IDToken     string `json:"-"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Session is an issued backend token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      UserInfo
}

// LoggedIn reports whether the token is set and still valid at now.
func (s Session) LoggedIn(now time.Time) bool {
	return s.Token != "" && !s.ExpiresAt.IsZero() && now.Before(s.ExpiresAt)
}

// LoginResult is the outcome of a successful credential check.
type LoginResult struct {
	NeedOTP bool
	OTPKey  string
	Session Session
}

// APIError is returned when the backend answers with a non-success status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("account: backend error (%d): %s", e.Status, e.Message)
}
