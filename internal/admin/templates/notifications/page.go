package notifications

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/admin-console/internal/admin/templates/helpers"
)

// TableID is the DOM id replaced by table fragments.
const TableID = "notifications-table"

// Index renders the notifications page body.
func Index(data PageData) templ.Component {
	return helpers.Component(func(ctx context.Context, b *helpers.Writer) {
		b.Open("section", "notifications space-y-4", "data-notifications-page", "")

		b.Open("dl", "stats grid grid-cols-4 gap-3", "data-notifications-summary", "")
		stat(b, "Total", data.Summary.Total)
		stat(b, "Unread", data.Summary.Unread)
		stat(b, "Read", data.Summary.Read)
		stat(b, "Archived", data.Summary.Archived)
		b.Close("dl")

		b.Open("form", "filters flex flex-wrap items-end gap-3",
			"method", "get",
			"action", data.Endpoint,
			"hx-get", data.Endpoint,
			"hx-target", "#"+TableID,
			"hx-swap", "outerHTML",
			"hx-push-url", "true",
			"data-notifications-filters", "",
		)
		selectField(b, "status", "Status", data.Filters.Statuses)
		selectField(b, "type", "Type", data.Filters.Types)
		selectField(b, "priority", "Priority", data.Filters.Priorities)
		inputField(b, "search", "Search", "search", data.Query.Search)
		inputField(b, "start", "From", "date", data.Query.Start)
		inputField(b, "end", "To", "date", data.Query.End)
		b.Element("button", "button button-primary", "Apply", "type", "submit")
		b.Close("form")

		b.Open("form", "", "method", "post", "action", data.Endpoint+"/read-all", "data-mark-all-read", "")
		csrfField(b, data.CSRFToken)
		b.Element("button", "button", "Mark all as read", "type", "submit")
		b.Close("form")

		b.Render(ctx, Table(data.Table))
		b.Close("section")
	})
}

// Table renders the list fragment with bulk actions and pagination.
func Table(data TableData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Open("div", "notifications-table", "id", TableID)
		if data.Error != "" {
			b.Element("p", "alert alert-danger", data.Error, "role", "alert")
		}

		b.Open("form", "", "method", "post", "data-notifications-bulk", "")
		csrfField(b, data.CSRFToken)
		b.Raw(`<input type="hidden" name="return"`)
		b.Attr("value", helpers.BuildURL(data.Endpoint, data.RawQuery))
		b.Raw(">")
		b.Open("div", "bulk-actions flex gap-2")
		for _, action := range []struct{ name, label string }{
			{"read", "Mark read"},
			{"unread", "Mark unread"},
			{"archive", "Archive"},
			{"delete", "Delete"},
		} {
			target := data.Endpoint + "/" + action.name
			b.Element("button", "button button-sm", action.label,
				"type", "submit",
				"formaction", target,
				"hx-post", target,
				"hx-include", "closest form",
				"hx-target", "#"+TableID,
				"hx-swap", "outerHTML",
				"data-bulk-action", action.name,
			)
		}
		b.Close("div")

		if len(data.Rows) == 0 && data.Error == "" {
			b.Element("p", "empty-state text-slate-500", data.EmptyMessage, "data-empty", "")
		} else {
			b.Open("ul", "notification-list divide-y")
			for _, row := range data.Rows {
				renderRow(b, row)
			}
			b.Close("ul")
		}
		b.Close("form")

		b.Open("nav", "pagination flex items-center justify-between", "aria-label", "Pagination")
		pageLink(b, data.Pagination.PrevHref, "Previous", "prev")
		b.Element("span", "text-sm", "Page "+strconv.Itoa(data.Pagination.Page)+" of "+strconv.Itoa(data.Pagination.Pages))
		pageLink(b, data.Pagination.NextHref, "Next", "next")
		b.Close("nav")
		b.Close("div")
	})
}

// Badge renders the unread counter shown in the top bar.
func Badge(data BadgeData) templ.Component {
	return helpers.Component(func(_ context.Context, b *helpers.Writer) {
		b.Raw("<a")
		b.Href(data.Href)
		b.Attr("class", "icon-button relative")
		b.Attr("title", "Notifications")
		b.Attr("data-notifications-badge", "")
		b.Raw(">")
		b.Icon("pi pi-bell")
		if data.Unread > 0 {
			class := "badge-count"
			if data.Urgent > 0 {
				class += " badge-urgent"
			}
			b.Element("span", class, data.Label(), "data-unread", strconv.Itoa(data.Unread))
		}
		b.Element("span", "sr-only", strconv.Itoa(data.Unread)+" unread notifications")
		b.Raw("</a>")
	})
}

func renderRow(b *helpers.Writer, row Row) {
	class := "notification-row flex gap-3 py-3"
	if row.Unread {
		class += " is-unread"
	}
	b.Open("li", class, "data-notification-id", row.ID)
	b.Raw(`<input type="checkbox" name="ids"`)
	b.Attr("value", row.ID)
	b.Attr("aria-label", "Select notification")
	b.Raw(">")
	b.Icon(row.TypeIcon)
	b.Open("div", "flex-1")
	b.Open("p", "font-medium")
	highlight(b, row.Title)
	b.Close("p")
	b.Open("p", "text-sm text-slate-600")
	highlight(b, row.Message)
	b.Close("p")
	b.Open("p", "meta flex gap-2 text-xs")
	b.Element("span", helpers.BadgeClass(row.TypeTone), row.TypeLabel)
	b.Element("span", helpers.BadgeClass(row.PriorityTone), row.PriorityLabel)
	if row.Sender != "" {
		b.Element("span", "", row.Sender)
	}
	b.Element("time", "", row.CreatedRelTime, "title", row.CreatedAt)
	b.Close("p")
	if row.ActionURL != "" {
		text := row.ActionText
		if text == "" {
			text = "Open"
		}
		b.Raw("<a")
		b.Href(row.ActionURL)
		b.Attr("class", "link text-sm")
		b.Raw(">")
		b.Text(text)
		b.Raw("</a>")
	}
	b.Close("div")
	b.Close("li")
}

func highlight(b *helpers.Writer, segs []helpers.HighlightSegment) {
	for _, seg := range segs {
		if seg.Match {
			b.Element("mark", "", seg.Text)
			continue
		}
		b.Text(seg.Text)
	}
}

func stat(b *helpers.Writer, label string, value int) {
	b.Open("div", "stat", "data-stat", label)
	b.Element("dt", "text-xs text-slate-500", label)
	b.Element("dd", "text-xl font-semibold", strconv.Itoa(value))
	b.Close("div")
}

func selectField(b *helpers.Writer, name, label string, options []Option) {
	b.Open("label", "field")
	b.Element("span", "field-label", label)
	b.Open("select", "input", "name", name)
	for _, opt := range options {
		b.Raw("<option")
		b.Attr("value", opt.Value)
		b.AttrIf("selected", opt.Active)
		b.Raw(">")
		text := opt.Label
		if opt.Value != "" {
			text += " (" + strconv.Itoa(opt.Count) + ")"
		}
		b.Text(text)
		b.Raw("</option>")
	}
	b.Close("select")
	b.Close("label")
}

func inputField(b *helpers.Writer, name, label, kind, value string) {
	b.Open("label", "field")
	b.Element("span", "field-label", label)
	b.Raw("<input")
	b.Attr("class", "input")
	b.Attr("type", kind)
	b.Attr("name", name)
	b.Attr("value", value)
	b.Raw(">")
	b.Close("label")
}

func csrfField(b *helpers.Writer, token string) {
	b.Raw(`<input type="hidden" name="_csrf"`)
	b.Attr("value", token)
	b.Raw(">")
}

func pageLink(b *helpers.Writer, href, label, rel string) {
	if href == "" {
		b.Element("span", "button button-sm is-disabled", label, "aria-disabled", "true")
		return
	}
	b.Raw("<a")
	b.Href(href)
	b.Attr("class", "button button-sm")
	b.Attr("rel", rel)
	b.Raw(">")
	b.Text(label)
	b.Raw("</a>")
}
