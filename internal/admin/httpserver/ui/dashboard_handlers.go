package ui

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/admin-console/internal/admin/logging"
	adminnotifications "finitefield.org/admin-console/internal/admin/notifications"
	"finitefield.org/admin-console/internal/admin/rbac"
	"finitefield.org/admin-console/internal/admin/templates/dashboard"
)

const recentAlertLimit = 5

// dashboard renders the landing page: inbox figures, unread alerts and
// shortcuts to every section of the menu.
func (h *Handlers) dashboard(r *http.Request, v *view) templ.Component {
	var (
		stats  adminnotifications.Stats
		recent adminnotifications.ListResult
		errMsg string
	)
	if v.user != nil && v.user.Can(rbac.CapNotificationsView) {
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			stats, err = h.notifications.Stats(ctx, token(v))
			return err
		})
		g.Go(func() error {
			var err error
			recent, err = h.notifications.List(ctx, token(v), adminnotifications.Query{
				Status:   adminnotifications.StatusUnread,
				PageSize: recentAlertLimit,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			logging.FromContext(r.Context()).Warn("dashboard: notifications failed", zap.Error(err))
			errMsg = listFailedMessage
		}
	}
	return dashboard.Index(dashboard.BuildPageData(v.base, stats, recent.Data, v.items, errMsg, h.now()))
}
