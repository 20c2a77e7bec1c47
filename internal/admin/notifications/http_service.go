package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// APIError is returned when the backend answers with a non-success status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notifications: backend error (%d): %s", e.Status, e.Message)
}

// HTTPService implements Service against the backend notifications API.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service rooted at baseURL.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("notifications: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("notifications: parse base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

// List implements Service.
func (s *HTTPService) List(ctx context.Context, token string, query Query) (ListResult, error) {
	query = query.Normalize()
	values := url.Values{}
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("pageSize", strconv.Itoa(query.PageSize))
	setIf(values, "status", string(query.Status))
	setIf(values, "type", string(query.Type))
	setIf(values, "priority", string(query.Priority))
	setIf(values, "search", query.Search)
	if query.Start != nil {
		values.Set("startDate", query.Start.UTC().Format(time.RFC3339))
	}
	if query.End != nil {
		values.Set("endDate", query.End.UTC().Format(time.RFC3339))
	}

	var result ListResult
	if err := s.call(ctx, http.MethodGet, "notifications?"+values.Encode(), nil, token, &result); err != nil {
		return ListResult{}, err
	}
	if result.Data == nil {
		result.Data = []Notification{}
	}
	return result, nil
}

// Stats implements Service.
func (s *HTTPService) Stats(ctx context.Context, token string) (Stats, error) {
	var stats Stats
	if err := s.call(ctx, http.MethodGet, "notifications/stats", nil, token, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Apply implements Service.
func (s *HTTPService) Apply(ctx context.Context, token string, action Action, ids []string) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}
	payload := actionPayload{IDs: ids, Action: action}
	if payload.IDs == nil {
		payload.IDs = []string{}
	}
	if action == ActionDelete {
		return s.call(ctx, http.MethodDelete, "notifications", payload, token, nil)
	}
	return s.call(ctx, http.MethodPatch, "notifications/"+string(action), payload, token, nil)
}

// MarkAllRead implements Service.
func (s *HTTPService) MarkAllRead(ctx context.Context, token string) error {
	return s.call(ctx, http.MethodPatch, "notifications/read-all", nil, token, nil)
}

type actionPayload struct {
	IDs    []string `json:"ids"`
	Action Action   `json:"action"`
}

func (s *HTTPService) call(ctx context.Context, method, endpoint string, payload any, token string, out any) error {
	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("notifications: encode payload: %w", err)
		}
		body = &buf
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("notifications: build request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base.ResolveReference(ref).String(), body)
	if err != nil {
		return fmt.Errorf("notifications: build request: %w", err)
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
		return fmt.Errorf("notifications: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notifications: decode response: %w", err)
	}
	return nil
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

func setIf(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
