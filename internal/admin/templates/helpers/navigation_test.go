package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/account"
	"finitefield.org/admin-console/internal/admin/httpserver/middleware"
)

func TestJoinBaseAndAppPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/admin/orders/list", JoinBase("/admin", "/orders/list"))
	require.Equal(t, "/orders/list", JoinBase("/", "orders/list"))
	require.Equal(t, "/admin", JoinBase("/admin", "/"))

	require.Equal(t, "/orders/list", AppPath("/admin", "/admin/orders/list/"))
	require.Equal(t, "/", AppPath("/admin", "/admin"))
	require.Equal(t, "/administrator", AppPath("/admin", "/administrator"))
	require.Equal(t, "/x", AppPath("/", "/x"))
}

func TestNavActive(t *testing.T) {
	t.Parallel()

	var ctx context.Context
	handler := middleware.RequestInfoMiddleware("/admin")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/orders/42", nil))

	require.True(t, NavActive(ctx, "/admin/orders", true))
	require.False(t, NavActive(ctx, "/admin/orders", false))
	require.True(t, NavActive(ctx, "/admin/orders/42/", false))
	require.False(t, NavActive(ctx, "/admin/order", true))
	require.Equal(t, "/admin/profile", URL(ctx, "profile"))
}

func TestHighlightSegments(t *testing.T) {
	t.Parallel()

	segs := HighlightSegments("Sync failed, sync again", "SYNC")
	require.Equal(t, []HighlightSegment{
		{Text: "Sync", Match: true},
		{Text: " failed, "},
		{Text: "sync", Match: true},
		{Text: " again"},
	}, segs)
	require.Equal(t, []HighlightSegment{{Text: "plain"}}, HighlightSegments("plain", " "))
	require.Nil(t, HighlightSegments("", ""))
}

func TestHasCapability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.True(t, HasCapability(ctx, ""))
	require.False(t, HasCapability(ctx, "notifications.view"))

	guest := middleware.ContextWithUser(ctx, &middleware.User{UserInfo: account.UserInfo{Role: "guest"}})
	require.False(t, HasCapability(guest, "notifications.view"))
	require.True(t, HasCapability(guest, "dashboard.view"))

	admin := middleware.ContextWithUser(ctx, &middleware.User{UserInfo: account.UserInfo{Role: "admin"}})
	require.True(t, HasCapability(admin, "settings.manage"))
}
