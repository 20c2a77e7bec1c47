// Package dashboard renders the landing page of the console.
package dashboard

import (
	"strconv"
	"time"

	"finitefield.org/admin-console/internal/admin/navigation"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// PageData represents the full dashboard SSR payload.
type PageData struct {
	KPIs     []KPIView
	Alerts   []AlertView
	Sections []SectionView
	Error    string
	Inbox    string
}

// KPIView is the rendered representation of a metric card.
type KPIView struct {
	ID    string
	Label string
	Value string
	Tone  string
	Href  string
}

// AlertView is one unread notification surfaced on the dashboard.
type AlertView struct {
	ID        string
	Title     string
	Message   string
	Tone      string
	Relative  string
	ActionURL string
	Action    string
}

// SectionView is a shortcut card for a top-level menu entry.
type SectionView struct {
	Key      string
	Label    string
	Icon     string
	Href     string
	Children []string
}

// BuildPageData prepares the dashboard payload. stats and recent may be
// empty when the notification backend failed; errMsg is then shown instead.
func BuildPageData(basePath string, stats adminnotifications.Stats, recent []adminnotifications.Notification, menu []navigation.MenuItem, errMsg string, now time.Time) PageData {
	inbox := helpers.JoinBase(basePath, "/notifications")
	data := PageData{
		Error: errMsg,
		Inbox: inbox,
	}
	if errMsg == "" {
		data.KPIs = KPIPayload(inbox, stats)
		data.Alerts = AlertsPayload(recent, now)
	}
	data.Sections = SectionsPayload(basePath, menu)
	return data
}

// KPIPayload turns inbox stats into metric cards.
func KPIPayload(inbox string, stats adminnotifications.Stats) []KPIView {
	urgent := stats.ByPriority[adminnotifications.PriorityUrgent]
	urgentTone := "default"
	if urgent > 0 {
		urgentTone = "danger"
	}
	unreadTone := "default"
	if stats.Unread > 0 {
		unreadTone = "info"
	}
	return []KPIView{
		{ID: "total", Label: "Notifications", Value: strconv.Itoa(stats.Total), Tone: "default", Href: inbox},
		{ID: "unread", Label: "Unread", Value: strconv.Itoa(stats.Unread), Tone: unreadTone, Href: inbox + "?status=unread"},
		{ID: "urgent", Label: "Urgent", Value: strconv.Itoa(urgent), Tone: urgentTone, Href: inbox + "?priority=urgent"},
		{ID: "archived", Label: "Archived", Value: strconv.Itoa(stats.Archived), Tone: "default", Href: inbox + "?status=archived"},
	}
}

// AlertsPayload keeps unread notifications, most urgent first in the order
// the backend returned them.
func AlertsPayload(items []adminnotifications.Notification, now time.Time) []AlertView {
	alerts := make([]AlertView, 0, len(items))
	for _, n := range items {
		if !n.Unread() {
			continue
		}
		tone := "info"
		switch n.Priority {
		case adminnotifications.PriorityUrgent:
			tone = "danger"
		case adminnotifications.PriorityHigh:
			tone = "warning"
		}
		alerts = append(alerts, AlertView{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Tone:      tone,
			Relative:  helpers.RelativeTo(n.CreatedAt, now),
			ActionURL: n.ActionURL,
			Action:    n.ActionText,
		})
	}
	return alerts
}

// SectionsPayload lists top-level menu entries other than the dashboard
// itself. Groups link to their first reachable child.
func SectionsPayload(basePath string, menu []navigation.MenuItem) []SectionView {
	sections := make([]SectionView, 0, len(menu))
	for _, item := range menu {
		if item.Route == "/dashboard" {
			continue
		}
		section := SectionView{
			Key:   item.Key,
			Label: item.Label,
			Icon:  item.Icon,
			Href:  helpers.JoinBase(basePath, firstRoute(item)),
		}
		for _, child := range item.Children {
			section.Children = append(section.Children, child.Label)
		}
		sections = append(sections, section)
	}
	return sections
}

func firstRoute(item navigation.MenuItem) string {
	if !item.HasChildren() {
		return item.Route
	}
	return firstRoute(item.Children[0])
}
