package notifications

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// StaticService serves an in-memory inbox for development and tests.
type StaticService struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

// NewStaticService constructs a StaticService. A nil slice seeds the demo inbox.
func NewStaticService(items []Notification) *StaticService {
	svc := &StaticService{now: time.Now}
	if items == nil {
		items = seedNotifications(svc.now())
	}
	svc.items = cloneAll(items)
	return svc
}

// WithClock overrides the clock used to stamp read and archive times.
func (s *StaticService) WithClock(now func() time.Time) *StaticService {
	if now != nil {
		s.now = now
	}
	return s
}

// List implements Service.
func (s *StaticService) List(_ context.Context, _ string, query Query) (ListResult, error) {
	query = query.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := filterNotifications(s.items, query)
	start := min((query.Page-1)*query.PageSize, len(filtered))
	end := min(start+query.PageSize, len(filtered))

	return ListResult{
		Data:        cloneAll(filtered[start:end]),
		Total:       len(filtered),
		UnreadCount: lo.CountBy(s.items, Notification.Unread),
		Page:        query.Page,
		PageSize:    query.PageSize,
	}, nil
}

// Stats implements Service.
func (s *StaticService) Stats(_ context.Context, _ string) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarise(s.items), nil
}

// Apply implements Service.
func (s *StaticService) Apply(_ context.Context, _ string, action Action, ids []string) error {
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}
	targets := lo.SliceToMap(ids, func(id string) (string, struct{}) { return id, struct{}{} })

	s.mu.Lock()
	defer s.mu.Unlock()

	if action == ActionDelete {
		s.items = lo.Reject(s.items, func(item Notification, _ int) bool {
			_, ok := targets[item.ID]
			return ok
		})
		return nil
	}

	now := s.now()
	for i := range s.items {
		if _, ok := targets[s.items[i].ID]; !ok {
			continue
		}
		applyAction(&s.items[i], action, now)
	}
	return nil
}

// MarkAllRead implements Service.
func (s *StaticService) MarkAllRead(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range s.items {
		applyAction(&s.items[i], ActionRead, now)
	}
	return nil
}

func applyAction(item *Notification, action Action, now time.Time) {
	switch action {
	case ActionRead:
		if item.Status == StatusUnread {
			item.Status = StatusRead
			item.ReadAt = ptrTime(now)
		}
	case ActionUnread:
		if item.Status == StatusRead {
			item.Status = StatusUnread
			item.ReadAt = nil
		}
	case ActionArchive:
		item.Status = StatusArchived
		item.ArchivedAt = ptrTime(now)
	}
}

func filterNotifications(list []Notification, query Query) []Notification {
	search := strings.ToLower(query.Search)
	return lo.Filter(list, func(item Notification, _ int) bool {
		if query.Status != "" && item.Status != query.Status {
			return false
		}
		if query.Type != "" && item.Type != query.Type {
			return false
		}
		if query.Priority != "" && item.Priority != query.Priority {
			return false
		}
		if query.Start != nil && item.CreatedAt.Before(*query.Start) {
			return false
		}
		if query.End != nil && item.CreatedAt.After(*query.End) {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Title), search) &&
			!strings.Contains(strings.ToLower(item.Message), search) {
			return false
		}
		return true
	})
}

func summarise(list []Notification) Stats {
	stats := Stats{
		Total:      len(list),
		ByType:     make(map[Type]int, len(Types())),
		ByPriority: make(map[Priority]int, len(Priorities())),
	}
	for _, t := range Types() {
		stats.ByType[t] = 0
	}
	for _, p := range Priorities() {
		stats.ByPriority[p] = 0
	}
	for _, item := range list {
		switch item.Status {
		case StatusUnread:
			stats.Unread++
		case StatusRead:
			stats.Read++
		case StatusArchived:
			stats.Archived++
		}
		stats.ByType[item.Type]++
		stats.ByPriority[item.Priority]++
	}
	return stats
}

func cloneAll(list []Notification) []Notification {
	out := slices.Clone(list)
	if out == nil {
		return []Notification{}
	}
	return out
}

func seedNotifications(now time.Time) []Notification {
	return []Notification{
		{
			ID:        "1",
			Title:     "Scheduled maintenance",
			Message:   "The system will be updated tonight at 23:00 and is expected to take about two hours.",
			Type:      TypeSystem,
			Priority:  PriorityHigh,
			Status:    StatusUnread,
			CreatedAt: now.Add(-30 * time.Minute),
			Sender:    "System administrator",
			Avatar:    "cog",
		},
		{
			ID:         "2",
			Title:      "New message",
			Message:    "You have a new message from Alex Chen.",
			Type:       TypeInfo,
			Priority:   PriorityNormal,
			Status:     StatusUnread,
			CreatedAt:  now.Add(-1 * time.Hour),
			Sender:     "Alex Chen",
			ActionURL:  "/messages/123",
			ActionText: "View message",
		},
		{
			ID:         "3",
			Title:      "Export finished",
			Message:    "Your data export job has completed.",
			Type:       TypeSuccess,
			Priority:   PriorityNormal,
			Status:     StatusRead,
			CreatedAt:  now.Add(-2 * time.Hour),
			ReadAt:     ptrTime(now.Add(-30 * time.Minute)),
			ActionURL:  "/downloads/export-123",
			ActionText: "Download file",
		},
		{
			ID:         "4",
			Title:      "Unusual sign-in detected",
			Message:    "An unusual sign-in was detected. Please review your account security.",
			Type:       TypeWarning,
			Priority:   PriorityHigh,
			Status:     StatusUnread,
			CreatedAt:  now.Add(-3 * time.Hour),
			Sender:     "Security center",
			ActionURL:  "/security/logs",
			ActionText: "View details",
		},
		{
			ID:         "5",
			Title:      "Sync failed",
			Message:    "Data synchronisation failed. Please contact support.",
			Type:       TypeError,
			Priority:   PriorityUrgent,
			Status:     StatusUnread,
			CreatedAt:  now.Add(-6 * time.Hour),
			Sender:     "System monitor",
			ActionURL:  "/support/ticket/456",
			ActionText: "Open ticket",
		},
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
