package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the backend auth API.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service rooted at baseURL.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("account: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("account: parse base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

type sessionPayload struct {
	Token    string   `json:"token"`
	ExpireAt int64    `json:"expire_at"`
	User     UserInfo `json:"user"`
	NeedOTP  bool     `json:"need_otp"`
	OTPKey   string   `json:"otp_key"`
}

func (p sessionPayload) session() Session {
	sess := Session{Token: p.Token, User: p.User}
	if p.ExpireAt > 0 {
		sess.ExpiresAt = time.Unix(p.ExpireAt, 0).UTC()
	}
	return sess
}

// Login implements Service. A 202 response or a need_otp flag starts the
// second-factor step.
func (s *HTTPService) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	resp, err := s.send(ctx, http.MethodPost, "auth/login", creds, "")
	if err != nil {
		return LoginResult{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, errorFromResponse(resp))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return LoginResult{}, errorFromResponse(resp)
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return LoginResult{}, fmt.Errorf("account: decode login: %w", err)
	}
	if resp.StatusCode == http.StatusAccepted || payload.NeedOTP {
		return LoginResult{NeedOTP: true, OTPKey: payload.OTPKey}, nil
	}
	if payload.Token == "" {
		return LoginResult{}, errors.New("account: login response carried no token")
	}
	return LoginResult{Session: payload.session()}, nil
}

// VerifyOTP implements Service.
func (s *HTTPService) VerifyOTP(ctx context.Context, otpKey, code string) (Session, error) {
	body := map[string]string{"otp_key": otpKey}
	if code = strings.TrimSpace(code); code != "" {
		body["code"] = code
	}
	resp, err := s.send(ctx, http.MethodPost, "auth/otp", body, "")
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Session{}, fmt.Errorf("%w: %w", ErrOTPRequired, errorFromResponse(resp))
	case resp.StatusCode != http.StatusOK:
		return Session{}, errorFromResponse(resp)
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Session{}, fmt.Errorf("account: decode otp: %w", err)
	}
	return payload.session(), nil
}

// CurrentUser implements Service.
func (s *HTTPService) CurrentUser(ctx context.Context, token string) (UserInfo, error) {
	if strings.TrimSpace(token) == "" {
		return UserInfo{}, ErrUnauthorized
	}
	resp, err := s.send(ctx, http.MethodGet, "user/profile", nil, token)
	if err != nil {
		return UserInfo{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return UserInfo{}, fmt.Errorf("%w: %w", ErrUnauthorized, errorFromResponse(resp))
	case resp.StatusCode != http.StatusOK:
		return UserInfo{}, errorFromResponse(resp)
	}

	var user UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return UserInfo{}, fmt.Errorf("account: decode profile: %w", err)
	}
	return user, nil
}

// Logout implements Service.
func (s *HTTPService) Logout(ctx context.Context, token string) error {
	resp, err := s.send(ctx, http.MethodPost, "auth/logout", nil, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	return nil
}

func (s *HTTPService) send(ctx context.Context, method, endpoint string, payload any, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("account: encode payload: %w", err)
		}
		body = &buf
	}
	target := s.base.ResolveReference(&url.URL{Path: endpoint})
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("account: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account: request failed: %w", err)
	}
	return resp, nil
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: payload.Message}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
