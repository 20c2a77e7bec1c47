package navigation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/routes"
)

func TestResolveLowerOrderWins(t *testing.T) {
	tree := &routes.Tree{Routes: []*routes.Node{{
		Path: "/", Name: "Layout", Layout: true,
		Children: []*routes.Node{{
			Path: "box", Name: "Box", Title: "Box",
			Children: []*routes.Node{
				{Path: "b", Name: "B", Order: routes.Order(2), Component: "page"},
				{Path: "a", Name: "A", Order: routes.Order(1), Component: "page"},
			},
		}},
	}}}

	got, ok := NewResolver(tree).Resolve("/box")
	require.True(t, ok)
	require.Equal(t, "/box/a", got)
}

func TestResolveDefaultTree(t *testing.T) {
	tree, err := routes.Default()
	require.NoError(t, err)
	resolver := NewResolver(tree)

	cases := []struct{ target, want string }{
		{"/dashboard", "/dashboard"},
		{"/customers", "/customers/list"},
		{"/products", "/products/list"},
		{"/products/categories", "/products/categories/add"},
		{"/products/categories/list", "/products/categories/list/a"},
		{"/products/categories/settings", "/products/categories/settings/rules"},
		{"/products/categories/settings/permissions", "/products/categories/settings/permissions/users"},
		{"/settings/", "/settings/general"},
		{"/", "/dashboard"},
	}
	for _, tc := range cases {
		got, ok := resolver.Resolve(tc.target)
		require.True(t, ok, tc.target)
		require.Equal(t, tc.want, got, tc.target)
	}

	_, ok := resolver.Resolve("/nowhere")
	require.False(t, ok)
}

func TestResolveDeadEndContainer(t *testing.T) {
	tree := &routes.Tree{Routes: []*routes.Node{{
		Path: "/", Name: "Layout", Layout: true,
		Children: []*routes.Node{{
			Path: "empty", Name: "Empty", Title: "Empty",
			Children: []*routes.Node{
				{Path: "nested", Name: "Nested", Children: []*routes.Node{{Path: "deeper", Name: "Deeper"}}},
				{Path: "hidden", Name: "HiddenPage", Hidden: true, Component: "page"},
			},
		}},
	}}}

	_, ok := NewResolver(tree).Resolve("/empty")
	require.False(t, ok)
}

func TestResolveParamRoutes(t *testing.T) {
	tree := &routes.Tree{Routes: []*routes.Node{{
		Path: "/", Name: "Layout", Layout: true,
		Children: []*routes.Node{{Path: "items/:id", Name: "Item", Component: "page"}},
	}}}

	got, ok := NewResolver(tree).Resolve("/items")
	require.True(t, ok)
	require.Equal(t, "/items", got)
}

func TestResolveWithFilter(t *testing.T) {
	tree, err := routes.Default()
	require.NoError(t, err)

	resolver := NewResolver(tree).WithFilter(func(n *routes.Node) bool {
		return n.Name != "CustomersList"
	})
	got, ok := resolver.Resolve("/customers")
	require.True(t, ok)
	require.Equal(t, "/customers/add", got)

	unfiltered, _ := NewResolver(tree).Resolve("/customers")
	require.Equal(t, "/customers/list", unfiltered)
}

func TestResolveRejectsCycles(t *testing.T) {
	loop := &routes.Node{Path: "x", Name: "Loop", Title: "Loop"}
	loop.Children = []*routes.Node{loop, loop}
	tree := &routes.Tree{Routes: []*routes.Node{{Path: "/", Name: "Layout", Layout: true, Children: []*routes.Node{loop}}}}
	resolver := NewResolver(tree)

	_, ok, err := resolver.Find("/x")
	require.ErrorIs(t, err, routes.ErrMalformedRouteTree)
	require.False(t, ok)

	_, ok = resolver.Resolve("/x")
	require.False(t, ok)

	nav := &recordingNavigator{}
	_, err = resolver.NavigateSmart(context.Background(), nav, "/x")
	require.ErrorIs(t, err, ErrNavigationFailed)
	require.ErrorIs(t, err, routes.ErrMalformedRouteTree)
	require.Empty(t, nav.paths)
}

func TestNavigateSmart(t *testing.T) {
	tree, err := routes.Default()
	require.NoError(t, err)
	resolver := NewResolver(tree)
	ctx := context.Background()

	t.Run("resolves containers", func(t *testing.T) {
		nav := &recordingNavigator{}
		dest, err := resolver.NavigateSmart(ctx, nav, "/orders")
		require.NoError(t, err)
		require.Equal(t, "/orders/list", dest)
		require.Equal(t, []string{"/orders/list"}, nav.paths)
	})

	t.Run("falls back to the original target", func(t *testing.T) {
		var calls []string
		nav := NavigatorFunc(func(_ context.Context, path string) error {
			calls = append(calls, path)
			if path == "/orders/list" {
				return errors.New("unknown route")
			}
			return nil
		})
		dest, err := resolver.NavigateSmart(ctx, nav, "/orders")
		require.NoError(t, err)
		require.Equal(t, "/orders", dest)
		require.Equal(t, []string{"/orders/list", "/orders"}, calls)
	})

	t.Run("unresolvable targets navigate verbatim", func(t *testing.T) {
		nav := &recordingNavigator{}
		dest, err := resolver.NavigateSmart(ctx, nav, "/unknown")
		require.NoError(t, err)
		require.Equal(t, "/unknown", dest)
	})

	t.Run("surfaces failure when every attempt fails", func(t *testing.T) {
		nav := &recordingNavigator{err: errors.New("down")}
		_, err := resolver.NavigateSmart(ctx, nav, "/orders")
		require.ErrorIs(t, err, ErrNavigationFailed)
		require.Equal(t, []string{"/orders/list", "/orders"}, nav.paths)
	})
}
