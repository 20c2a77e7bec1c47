package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/logging"
	"finitefield.org/admin-console/internal/admin/rbac"
	appsession "finitefield.org/admin-console/internal/admin/session"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// User is the authenticated operator together with their backend token.
type User struct {
	account.UserInfo
	Token string
}

// Subject returns the rbac view of the user.
func (u *User) Subject() rbac.Subject {
	if u == nil {
		return rbac.Subject{}
	}
	return u.UserInfo.Subject()
}

// Can reports whether the user holds capability.
func (u *User) Can(capability rbac.Capability) bool {
	return u.Subject().Can(capability)
}

// Authenticator resolves an incoming Bearer token into a User.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*User, error)
}

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates an auth attempt without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates a malformed or invalid token.
	ReasonTokenInvalid = "token_invalid"
	// ReasonTokenExpired indicates an expired token which may be recoverable.
	ReasonTokenExpired = "token_expired"
)

// AccountAuthenticator validates bearer tokens against an account service.
func AccountAuthenticator(svc account.Service) Authenticator {
	if svc == nil {
		panic("account service is required")
	}
	return &accountAuthenticator{svc: svc}
}

type accountAuthenticator struct {
	svc account.Service
}

func (a *accountAuthenticator) Authenticate(r *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}
	info, err := a.svc.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, account.ErrTokenExpired) {
			return nil, NewAuthError(ReasonTokenExpired, err)
		}
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}
	return &User{UserInfo: info, Token: token}, nil
}

// Auth attaches the signed-in User to the request context. The session is
// consulted first; otherwise a Bearer token is resolved with authenticator.
// Anonymous requests are sent to loginPath with a next parameter.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())
			sess, hasSession := SessionFromContext(r.Context())

			if hasSession && sess.LoggedIn(time.Now()) {
				ctx := ContextWithUser(r.Context(), userFromSession(sess.User()))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = cookieToken(r)
			}
			if strings.TrimSpace(token) == "" || authenticator == nil {
				if hasSession && sess.User() != nil {
					sess.SetUser(nil, time.Time{})
					handleUnauthorized(w, r, loginPath, ReasonTokenExpired)
					return
				}
				handleUnauthorized(w, r, loginPath, ReasonMissingToken)
				return
			}

			user, err := authenticator.Authenticate(r, token)
			if err != nil || user == nil {
				reason := ReasonTokenInvalid
				var authErr *AuthError
				if errors.As(err, &authErr) {
					if authErr.Reason != "" {
						reason = authErr.Reason
					}
					err = authErr.Err
				}
				if err == nil {
					err = ErrUnauthorized
				}
				logger.Warn("auth failure", zap.String("reason", reason), zap.Error(err))
				destroySession(r.Context())
				handleUnauthorized(w, r, loginPath, reason)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextWithUser stores user on ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// SessionUser converts an account session into its persisted form.
func SessionUser(info account.UserInfo, token string) *appsession.User {
	return &appsession.User{
		ID:          string(info.ID),
		Username:    info.Username,
		Name:        info.Name,
		Email:       info.Email,
		Role:        info.Role,
		Avatar:      info.Avatar,
		Permissions: append([]string(nil), info.Permissions...),
		Token:       token,
	}
}

func userFromSession(stored *appsession.User) *User {
	return &User{
		UserInfo: account.UserInfo{
			ID:          account.ID(stored.ID),
			Name:        stored.Name,
			Username:    stored.Username,
			Email:       stored.Email,
			Role:        stored.Role,
			Status:      "active",
			Avatar:      stored.Avatar,
			Permissions: append([]string(nil), stored.Permissions...),
		},
		Token: stored.Token,
	}
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieToken(r *http.Request) string {
	candidates := []string{"Authorization", "__session", "idToken", "IDToken"}
	for _, name := range candidates {
		c, err := r.Cookie(name)
		if err != nil {
			continue
		}
		val := strings.TrimSpace(c.Value)
		if val == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(val), "bearer ") {
			return strings.TrimSpace(val[7:])
		}
		return val
	}
	return ""
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	if reason == "" {
		reason = ReasonTokenInvalid
	}

	if IsHTMXRequest(r.Context()) {
		if reason == ReasonTokenExpired {
			w.Header().Set("HX-Refresh", "true")
		} else {
			w.Header().Set("HX-Redirect", loginPath)
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	redirectURL := loginPath
	if u, err := url.Parse(loginPath); err == nil {
		q := u.Query()
		if reason == ReasonTokenExpired {
			q.Set("reason", "expired")
		}
		if r.Method == http.MethodGet && r.URL != nil && r.URL.Path != u.Path {
			q.Set("next", r.URL.RequestURI())
		}
		u.RawQuery = q.Encode()
		redirectURL = u.String()
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func destroySession(ctx context.Context) {
	if sess, ok := SessionFromContext(ctx); ok && sess != nil {
		sess.Destroy()
	}
}
