package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	custommw "finitefield.org/admin-console/internal/admin/httpserver/middleware"
	"finitefield.org/admin-console/internal/admin/logging"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/templates/helpers"
	notificationstpl "finitefield.org/admin-console/internal/admin/templates/notifications"
)

const (
	notificationsPath = "/notifications"
	listFailedMessage = "Notifications could not be loaded. Please try again later."
)

// notificationsPage renders the inbox, or only the table when htmx asks for
// it via the filter form.
func (h *Handlers) notificationsPage(w http.ResponseWriter, r *http.Request, v *view) (templ.Component, bool) {
	ctx := r.Context()
	endpoint := helpers.JoinBase(v.base, notificationsPath)
	params := buildNotificationsRequest(r.URL.Query())
	table := h.notificationsTable(r, v, endpoint, params)

	if custommw.HTMXInfoFromContext(ctx).Targets(notificationstpl.TableID) {
		w.Header().Set("HX-Push-Url", helpers.BuildURL(endpoint, params.rawQuery))
		templ.Handler(notificationstpl.Table(table)).ServeHTTP(w, r)
		return nil, true
	}

	stats, err := h.notifications.Stats(ctx, token(v))
	if err != nil {
		logging.FromContext(ctx).Warn("notifications: stats failed", zap.Error(err))
		stats = adminnotifications.Stats{}
	}
	return notificationstpl.Index(notificationstpl.BuildPageData(endpoint, params.state, table, stats)), false
}

func (h *Handlers) notificationsTable(r *http.Request, v *view, endpoint string, params notificationsRequest) notificationstpl.TableData {
	ctx := r.Context()
	result, err := h.notifications.List(ctx, token(v), params.query)
	errMsg := ""
	if err != nil {
		logging.FromContext(ctx).Warn("notifications: list failed", zap.Error(err))
		errMsg = listFailedMessage
		result = adminnotifications.ListResult{Page: params.query.Page}
	}
	return notificationstpl.TablePayload(endpoint, params.rawQuery, params.state, result, errMsg, custommw.CSRFTokenFromContext(ctx), h.now())
}

// NotificationsBadge renders the top-bar badge fragment.
func (h *Handlers) NotificationsBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	stats, err := h.notifications.Stats(ctx, user.Token)
	if err != nil {
		logging.FromContext(ctx).Warn("notifications: badge failed", zap.Error(err))
		stats = adminnotifications.Stats{}
	}

	href := helpers.JoinBase(custommw.BasePathFromContext(ctx), notificationsPath)
	templ.Handler(notificationstpl.Badge(notificationstpl.BadgePayload(href, stats))).ServeHTTP(w, r)
}

// NotificationsAction applies a bulk action to the checked notifications.
func (h *Handlers) NotificationsAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.load(r)
	if err != nil {
		h.serverError(w, r, "notifications: build menu failed", err)
		return
	}

	action, err := adminnotifications.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ids := nonEmpty(r.PostForm["ids"])

	endpoint := helpers.JoinBase(v.base, notificationsPath)
	rawQuery := returnQuery(endpoint, r.PostFormValue("return"))
	status := http.StatusOK
	if len(ids) > 0 {
		if err := h.notifications.Apply(ctx, token(v), action, ids); err != nil {
			logging.FromContext(ctx).Warn("notifications: bulk action failed", zap.String("action", string(action)), zap.Error(err))
			status = http.StatusBadGateway
		}
	}

	if !custommw.IsHTMXRequest(ctx) {
		http.Redirect(w, r, helpers.BuildURL(endpoint, rawQuery), http.StatusSeeOther)
		return
	}

	values, _ := url.ParseQuery(rawQuery)
	params := buildNotificationsRequest(values)
	table := h.notificationsTable(r, v, endpoint, params)
	if status != http.StatusOK {
		table.Error = "The action could not be applied. Please try again."
	}
	w.Header().Set("HX-Trigger", "notifications-changed")
	templ.Handler(notificationstpl.Table(table), templ.WithStatus(status)).ServeHTTP(w, r)
}

// NotificationsReadAll marks the whole inbox as read.
func (h *Handlers) NotificationsReadAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := h.notifications.MarkAllRead(ctx, user.Token); err != nil {
		logging.FromContext(ctx).Warn("notifications: mark all read failed", zap.Error(err))
		http.Error(w, "Notifications could not be updated.", http.StatusBadGateway)
		return
	}
	redirect(w, r, helpers.JoinBase(custommw.BasePathFromContext(ctx), notificationsPath), http.StatusSeeOther)
}

type notificationsRequest struct {
	query    adminnotifications.Query
	state    notificationstpl.QueryState
	rawQuery string
}

// buildNotificationsRequest reads the filter form. Unknown enum values are
// dropped rather than rejected.
func buildNotificationsRequest(values url.Values) notificationsRequest {
	status := adminnotifications.Status(strings.TrimSpace(values.Get("status")))
	switch status {
	case adminnotifications.StatusUnread, adminnotifications.StatusRead, adminnotifications.StatusArchived:
	default:
		status = ""
	}
	kind := adminnotifications.Type(strings.TrimSpace(values.Get("type")))
	if !lo.Contains(adminnotifications.Types(), kind) {
		kind = ""
	}
	priority := adminnotifications.Priority(strings.TrimSpace(values.Get("priority")))
	if !lo.Contains(adminnotifications.Priorities(), priority) {
		priority = ""
	}
	search := strings.TrimSpace(values.Get("search"))
	rawStart := strings.TrimSpace(values.Get("start"))
	rawEnd := strings.TrimSpace(values.Get("end"))
	page, _ := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if page < 1 {
		page = 1
	}

	var start, end *time.Time
	if ts, ok := parseDate(rawStart); ok {
		start = &ts
	} else {
		rawStart = ""
	}
	if ts, ok := parseDate(rawEnd); ok {
		// The end date is inclusive.
		ts = ts.Add(24*time.Hour - time.Nanosecond)
		end = &ts
	} else {
		rawEnd = ""
	}

	canonical := url.Values{}
	set := func(key, value string) {
		if value != "" {
			canonical.Set(key, value)
		}
	}
	set("status", string(status))
	set("type", string(kind))
	set("priority", string(priority))
	set("search", search)
	set("start", rawStart)
	set("end", rawEnd)
	if page > 1 {
		canonical.Set("page", strconv.Itoa(page))
	}

	return notificationsRequest{
		query: adminnotifications.Query{
			Page:     page,
			Status:   status,
			Type:     kind,
			Priority: priority,
			Search:   search,
			Start:    start,
			End:      end,
		},
		state: notificationstpl.QueryState{
			Status:   string(status),
			Type:     string(kind),
			Priority: string(priority),
			Search:   search,
			Start:    rawStart,
			End:      rawEnd,
			Page:     page,
		},
		rawQuery: canonical.Encode(),
	}
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// returnQuery keeps the query of a return URL that points at the inbox.
func returnQuery(endpoint, raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme != "" || parsed.Host != "" || parsed.Path != endpoint {
		return ""
	}
	return parsed.RawQuery
}

func nonEmpty(values []string) []string {
	return lo.Compact(lo.Map(values, func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

func token(v *view) string {
	if v.user == nil {
		return ""
	}
	return v.user.Token
}
