package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DemoOTPCode is the second-factor code accepted by StaticService.
const DemoOTPCode = "123456"

// StaticUser is one account known to StaticService.
type StaticUser struct {
	Password   string
	RequireOTP bool
	Info       UserInfo
}

// StaticService authenticates against a fixed set of users kept in memory.
type StaticService struct {
	users    map[string]StaticUser
	tokenTTL time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]string
	tokens  map[string]Session
}

// DemoUsers returns the built-in development accounts.
func DemoUsers(adminOTP bool) []StaticUser {
	return []StaticUser{
		{
			Password:   "admin123",
			RequireOTP: adminOTP,
			Info: UserInfo{
				ID:          "1",
				Name:        "Administrator",
				Username:    "admin",
				Email:       "admin@example.com",
				Role:        "admin",
				Status:      "active",
				Permissions: []string{"*"},
			},
		},
		{
			Password: "user123",
			Info: UserInfo{
				ID:       "2",
				Name:     "Regular User",
				Username: "user",
				Email:    "user@example.com",
				Role:     "user",
				Status:   "active",
			},
		},
	}
}

// NewStaticService builds a service for users. Tokens live for tokenTTL, or
// twelve hours when tokenTTL is not positive.
func NewStaticService(users []StaticUser, tokenTTL time.Duration) *StaticService {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	index := make(map[string]StaticUser, len(users))
	for _, u := range users {
		index[strings.ToLower(u.Info.Username)] = u
	}
	return &StaticService{
		users:    index,
		tokenTTL: tokenTTL,
		now:      time.Now,
		pending:  make(map[string]string),
		tokens:   make(map[string]Session),
	}
}

// WithClock overrides the clock used for token expiry.
func (s *StaticService) WithClock(now func() time.Time) *StaticService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login implements Service.
func (s *StaticService) Login(_ context.Context, creds Credentials) (LoginResult, error) {
	user, ok := s.users[strings.ToLower(strings.TrimSpace(creds.Username))]
	if !ok || user.Password == "" || user.Password != creds.Password {
		return LoginResult{}, ErrInvalidCredentials
	}
	if user.Info.Status != "" && user.Info.Status != "active" {
		return LoginResult{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user.RequireOTP {
		key := uuid.NewString()
		s.pending[key] = strings.ToLower(user.Info.Username)
		return LoginResult{NeedOTP: true, OTPKey: key}, nil
	}
	return LoginResult{Session: s.issueLocked(user.Info)}, nil
}

// VerifyOTP implements Service.
func (s *StaticService) VerifyOTP(_ context.Context, otpKey, code string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.pending[otpKey]
	if !ok {
		return Session{}, ErrUnauthorized
	}
	if strings.TrimSpace(code) != DemoOTPCode {
		return Session{}, ErrOTPRequired
	}
	delete(s.pending, otpKey)
	return s.issueLocked(s.users[username].Info), nil
}

// CurrentUser implements Service.
func (s *StaticService) CurrentUser(_ context.Context, token string) (UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.tokens[token]
	if !ok {
		return UserInfo{}, ErrUnauthorized
	}
	if !sess.LoggedIn(s.now()) {
		delete(s.tokens, token)
		return UserInfo{}, ErrUnauthorized
	}
	return sess.User, nil
}

// Logout implements Service.
func (s *StaticService) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return nil
}

func (s *StaticService) issueLocked(info UserInfo) Session {
	sess := Session{
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.tokenTTL),
		User:      info,
	}
	s.tokens[sess.Token] = sess
	return sess
}
