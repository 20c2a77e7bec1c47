package notifications

import (
	"strconv"
	"strings"
	"time"

	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// PageData contains the full SSR payload for the notifications page.
type PageData struct {
	Endpoint   string
	Query      QueryState
	Filters    Filters
	Summary    Summary
	Table      TableData
	CSRFToken  string
	Flash      string
	Pagination Pagination
}

// QueryState represents the submitted filter params as strings, ready to be
// echoed back into the form.
type QueryState struct {
	Status   string
	Type     string
	Priority string
	Search   string
	Start    string
	End      string
	Page     int
}

// Filters groups the available filtering controls.
type Filters struct {
	Statuses   []Option
	Types      []Option
	Priorities []Option
}

// Option renders one <option> or chip.
type Option struct {
	Value  string
	Label  string
	Count  int
	Active bool
}

// Summary is the stats strip above the table.
type Summary struct {
	Total    int
	Unread   int
	Read     int
	Archived int
}

// TableData is the table fragment payload.
type TableData struct {
	Endpoint     string
	RawQuery     string
	Rows         []Row
	Error        string
	EmptyMessage string
	Total        int
	UnreadCount  int
	CSRFToken    string
	Pagination   Pagination
}

// Row is a display-friendly notification.
type Row struct {
	ID             string
	Title          []helpers.HighlightSegment
	Message        []helpers.HighlightSegment
	TypeLabel      string
	TypeTone       string
	TypeIcon       string
	PriorityLabel  string
	PriorityTone   string
	Unread         bool
	Archived       bool
	Sender         string
	ActionURL      string
	ActionText     string
	CreatedRelTime string
	CreatedAt      string
}

// Pagination links; empty strings disable the control.
type Pagination struct {
	Page     int
	Pages    int
	PrevHref string
	NextHref string
}

// BadgeData represents the payload for the top bar badge fragment.
type BadgeData struct {
	Unread int
	Urgent int
	Href   string
}

// Label returns the badge count text.
func (b BadgeData) Label() string {
	if b.Unread > 99 {
		return "99+"
	}
	return strconv.Itoa(b.Unread)
}

// BuildPageData assembles the SSR payload.
func BuildPageData(endpoint string, state QueryState, table TableData, stats adminnotifications.Stats) PageData {
	return PageData{
		Endpoint: endpoint,
		Query:    state,
		Filters:  buildFilters(state, stats),
		Summary: Summary{
			Total:    stats.Total,
			Unread:   stats.Unread,
			Read:     stats.Read,
			Archived: stats.Archived,
		},
		Table:      table,
		CSRFToken:  table.CSRFToken,
		Pagination: table.Pagination,
	}
}

// TablePayload converts a list result into table rows.
func TablePayload(endpoint, rawQuery string, state QueryState, result adminnotifications.ListResult, errMsg, csrf string, now time.Time) TableData {
	rows := make([]Row, 0, len(result.Data))
	for _, n := range result.Data {
		rows = append(rows, buildRow(n, state.Search, now))
	}
	empty := "You're all caught up."
	if state.Status != "" || state.Type != "" || state.Priority != "" || state.Search != "" || state.Start != "" || state.End != "" {
		empty = "No notifications match the current filters."
	}
	return TableData{
		Endpoint:     endpoint,
		RawQuery:     rawQuery,
		Rows:         rows,
		Error:        errMsg,
		EmptyMessage: empty,
		Total:        result.Total,
		UnreadCount:  result.UnreadCount,
		CSRFToken:    csrf,
		Pagination:   buildPagination(endpoint, rawQuery, result),
	}
}

// BadgePayload prepares the badge fragment.
func BadgePayload(href string, stats adminnotifications.Stats) BadgeData {
	return BadgeData{
		Unread: stats.Unread,
		Urgent: stats.ByPriority[adminnotifications.PriorityUrgent],
		Href:   href,
	}
}

func buildRow(n adminnotifications.Notification, search string, now time.Time) Row {
	return Row{
		ID:             n.ID,
		Title:          helpers.HighlightSegments(n.Title, search),
		Message:        helpers.HighlightSegments(n.Message, search),
		TypeLabel:      titleCase(string(n.Type)),
		TypeTone:       typeTone(n.Type),
		TypeIcon:       typeIcon(n.Type),
		PriorityLabel:  titleCase(string(n.Priority)),
		PriorityTone:   priorityTone(n.Priority),
		Unread:         n.Unread(),
		Archived:       n.Status == adminnotifications.StatusArchived,
		Sender:         n.Sender,
		ActionURL:      n.ActionURL,
		ActionText:     n.ActionText,
		CreatedRelTime: helpers.RelativeTo(n.CreatedAt, now),
		CreatedAt:      helpers.Date(n.CreatedAt, ""),
	}
}

func buildPagination(endpoint, rawQuery string, result adminnotifications.ListResult) Pagination {
	pages := result.TotalPages()
	page := result.Page
	if page < 1 {
		page = 1
	}
	p := Pagination{Page: page, Pages: pages}
	if page > 1 {
		p.PrevHref = helpers.BuildURL(endpoint, helpers.SetRawQuery(rawQuery, "page", strconv.Itoa(page-1)))
	}
	if page < pages {
		p.NextHref = helpers.BuildURL(endpoint, helpers.SetRawQuery(rawQuery, "page", strconv.Itoa(page+1)))
	}
	return p
}

func buildFilters(state QueryState, stats adminnotifications.Stats) Filters {
	statuses := []Option{
		{Value: "", Label: "All", Count: stats.Total},
		{Value: string(adminnotifications.StatusUnread), Label: "Unread", Count: stats.Unread},
		{Value: string(adminnotifications.StatusRead), Label: "Read", Count: stats.Read},
		{Value: string(adminnotifications.StatusArchived), Label: "Archived", Count: stats.Archived},
	}
	for i := range statuses {
		statuses[i].Active = statuses[i].Value == state.Status
	}

	types := []Option{{Value: "", Label: "All types", Active: state.Type == ""}}
	for _, t := range adminnotifications.Types() {
		types = append(types, Option{
			Value:  string(t),
			Label:  titleCase(string(t)),
			Count:  stats.ByType[t],
			Active: string(t) == state.Type,
		})
	}

	priorities := []Option{{Value: "", Label: "All priorities", Active: state.Priority == ""}}
	for _, p := range adminnotifications.Priorities() {
		priorities = append(priorities, Option{
			Value:  string(p),
			Label:  titleCase(string(p)),
			Count:  stats.ByPriority[p],
			Active: string(p) == state.Priority,
		})
	}
	return Filters{Statuses: statuses, Types: types, Priorities: priorities}
}

func typeTone(t adminnotifications.Type) string {
	switch t {
	case adminnotifications.TypeSuccess:
		return "success"
	case adminnotifications.TypeWarning:
		return "warning"
	case adminnotifications.TypeError:
		return "danger"
	case adminnotifications.TypeInfo:
		return "info"
	default:
		return ""
	}
}

func typeIcon(t adminnotifications.Type) string {
	switch t {
	case adminnotifications.TypeSuccess:
		return "pi pi-check-circle"
	case adminnotifications.TypeWarning:
		return "pi pi-exclamation-triangle"
	case adminnotifications.TypeError:
		return "pi pi-times-circle"
	case adminnotifications.TypeSystem:
		return "pi pi-cog"
	default:
		return "pi pi-info-circle"
	}
}

func priorityTone(p adminnotifications.Priority) string {
	switch p {
	case adminnotifications.PriorityUrgent:
		return "danger"
	case adminnotifications.PriorityHigh:
		return "warning"
	case adminnotifications.PriorityNormal:
		return "info"
	default:
		return ""
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
