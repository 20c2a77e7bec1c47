package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// ErrTokenExpired is returned when a Firebase ID token has expired.
var ErrTokenExpired = errors.New("account: firebase token expired")

// FirebaseTokenVerifier abstracts the Firebase Admin SDK client for testability.
type FirebaseTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseService signs operators in with Firebase ID tokens obtained by the
// browser. Second factors are handled by Firebase itself.
type FirebaseService struct {
	verifier FirebaseTokenVerifier
}

// NewFirebaseService constructs a Service backed by verifier.
func NewFirebaseService(verifier FirebaseTokenVerifier) *FirebaseService {
	if verifier == nil {
		panic("firebase token verifier is required")
	}
	return &FirebaseService{verifier: verifier}
}

// Login implements Service using Credentials.IDToken.
func (f *FirebaseService) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	token := strings.TrimSpace(creds.IDToken)
	if token == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	verified, err := f.verify(ctx, token)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	sess := Session{
		Token: token,
		User:  userFromToken(verified),
	}
	if verified.Expires > 0 {
		sess.ExpiresAt = time.Unix(verified.Expires, 0).UTC()
	}
	return LoginResult{Session: sess}, nil
}

// VerifyOTP is not used with Firebase.
func (f *FirebaseService) VerifyOTP(context.Context, string, string) (Session, error) {
	return Session{}, ErrUnsupported
}

// CurrentUser implements Service.
func (f *FirebaseService) CurrentUser(ctx context.Context, token string) (UserInfo, error) {
	if strings.TrimSpace(token) == "" {
		return UserInfo{}, ErrUnauthorized
	}
	verified, err := f.verify(ctx, token)
	if err != nil {
		return UserInfo{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return userFromToken(verified), nil
}

// Logout is a no-op; the browser drops the Firebase credential.
func (f *FirebaseService) Logout(context.Context, string) error {
	return nil
}

func (f *FirebaseService) verify(ctx context.Context, token string) (*firebaseauth.Token, error) {
	verified, err := f.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		if firebaseauth.IsIDTokenExpired(err) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, err
	}
	if verified == nil {
		return nil, errors.New("account: verifier returned no token")
	}
	return verified, nil
}

func userFromToken(token *firebaseauth.Token) UserInfo {
	roles := claimStringSlice(token.Claims["role"], token.Claims["roles"])
	role := ""
	if len(roles) > 0 {
		role = roles[0]
	}
	email := claimString(token.Claims["email"])
	return UserInfo{
		ID:          ID(token.UID),
		Name:        claimString(token.Claims["name"]),
		Username:    email,
		Email:       email,
		Role:        role,
		Status:      "active",
		Avatar:      claimString(token.Claims["picture"]),
		Permissions: claimStringSlice(token.Claims["permissions"]),
	}
}

func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	default:
		return ""
	}
}

func claimStringSlice(values ...any) []string {
	seen := make(map[string]struct{})
	var result []string

	appendValue := func(val string) {
		val = strings.TrimSpace(val)
		if val == "" {
			return
		}
		if _, ok := seen[val]; !ok {
			seen[val] = struct{}{}
			result = append(result, val)
		}
	}

	for _, value := range values {
		switch v := value.(type) {
		case string:
			appendValue(v)
		case []string:
			for _, item := range v {
				appendValue(item)
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					appendValue(s)
				}
			}
		case map[string]any:
			for key, val := range v {
				if b, ok := val.(bool); ok && b {
					appendValue(key)
				}
			}
		}
	}
	return result
}
