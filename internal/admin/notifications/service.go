package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotConfigured indicates the notifications service dependency has not been provided.
	ErrNotConfigured = errors.New("notifications service not configured")
	// ErrInvalidAction is returned when an unknown bulk action is requested.
	ErrInvalidAction = errors.New("notifications: invalid action")
)

// DefaultPageSize applies when a query does not specify a page size.
const DefaultPageSize = 20

// Service defines access to the signed-in user's notification inbox.
type Service interface {
	// List returns one page of notifications matching the query filters.
	List(ctx context.Context, token string, query Query) (ListResult, error)
	// Stats summarises the whole inbox.
	Stats(ctx context.Context, token string) (Stats, error)
	// Apply runs a bulk action against the given notification IDs.
	Apply(ctx context.Context, token string, action Action, ids []string) error
	// MarkAllRead moves every unread notification to read.
	MarkAllRead(ctx context.Context, token string) error
}

// Type identifies what kind of event produced a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSystem  Type = "system"
)

// Types lists every notification type in display order.
func Types() []Type {
	return []Type{TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeSystem}
}

// Priority classifies the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most urgent.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}
}

// Status describes where a notification sits in the inbox lifecycle.
type Status string

const (
	StatusUnread   Status = "unread"
	StatusRead     Status = "read"
	StatusArchived Status = "archived"
)

// Action is a bulk mutation applied to a set of notifications.
type Action string

const (
	ActionRead    Action = "read"
	ActionUnread  Action = "unread"
	ActionArchive Action = "archive"
	ActionDelete  Action = "delete"
)

// ParseAction validates a raw action name.
func ParseAction(raw string) (Action, error) {
	switch action := Action(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionRead, ActionUnread, ActionArchive, ActionDelete:
		return action, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

// Notification is a single inbox entry.
type Notification struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Type       Type           `json:"type"`
	Priority   Priority       `json:"priority"`
	Status     Status         `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ReadAt     *time.Time     `json:"readAt,omitempty"`
	ArchivedAt *time.Time     `json:"archivedAt,omitempty"`
	ActionURL  string         `json:"actionUrl,omitempty"`
	ActionText string         `json:"actionText,omitempty"`
	Avatar     string         `json:"avatar,omitempty"`
	Sender     string         `json:"sender,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Unread reports whether the notification still needs attention.
func (n Notification) Unread() bool {
	return n.Status == StatusUnread
}

// Query captures filter and paging arguments for listing notifications.
type Query struct {
	Page     int
	PageSize int
	Status   Status
	Type     Type
	Priority Priority
	Search   string
	Start    *time.Time
	End      *time.Time
}

// Normalize fills paging defaults.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// ListResult is one page of notifications.
type ListResult struct {
	Data        []Notification `json:"data"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unreadCount"`
	Page        int            `json:"page"`
	PageSize    int            `json:"pageSize"`
}

// TotalPages returns the page count for the filtered total.
func (r ListResult) TotalPages() int {
	if r.PageSize < 1 || r.Total == 0 {
		return 1
	}
	return (r.Total + r.PageSize - 1) / r.PageSize
}

// Stats summarises the inbox by status, type and priority.
type Stats struct {
	Total      int              `json:"total"`
	Unread     int              `json:"unread"`
	Read       int              `json:"read"`
	Archived   int              `json:"archived"`
	ByType     map[Type]int     `json:"byType"`
	ByPriority map[Priority]int `json:"byPriority"`
}
