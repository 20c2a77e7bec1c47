package navigation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"finitefield.org/admin-console/internal/admin/routes"
)

func sampleTree() *routes.Tree {
	return &routes.Tree{Routes: []*routes.Node{
		{
			Path: "/", Name: "Layout", Layout: true, Redirect: "/home",
			Children: []*routes.Node{
				{Path: "reports", Name: "Reports", Title: "Reports", Icon: "pi pi-chart", Children: []*routes.Node{
					{Path: "weekly", Name: "Weekly", Title: "Weekly", Component: "page"},
					{Path: "daily", Name: "Daily", Title: "Daily", Order: routes.Order(1), Component: "page"},
					{Path: "monthly", Name: "Monthly", Title: "Monthly", Component: "page"},
				}},
				{Path: "home", Name: "Home", Title: "Home", Icon: "pi pi-home", Order: routes.Order(1), Component: "page"},
				{Path: "secret", Name: "Secret", Title: "Secret", Hidden: true, Children: []*routes.Node{
					{Path: "inner", Name: "SecretInner", Title: "Inner", Component: "page"},
				}},
				{Path: "untitled", Name: "Untitled", Component: "page"},
				{Path: "dead", Name: "Dead", Title: "Dead end"},
				{Path: "groups", Name: "Groups", Title: "Groups", Order: routes.Order(2), Children: []*routes.Node{
					{Path: "hidden-only", Name: "HiddenOnly", Title: "Hidden", Hidden: true, Component: "page"},
				}},
			},
		},
		{Path: "/login", Name: "Login", Title: "Sign in", Component: "login"},
	}}
}

func TestBuildMenu(t *testing.T) {
	items, err := BuildMenu(sampleTree())
	require.NoError(t, err)

	want := []MenuItem{
		{Key: "Home", Label: "Home", Icon: "pi pi-home", Route: "/home", Order: 1},
		{Key: "Groups", Label: "Groups", Route: "/groups", Order: 2},
		{Key: "Reports", Label: "Reports", Icon: "pi pi-chart", Order: routes.DefaultOrder, Children: []MenuItem{
			{Key: "Daily", Label: "Daily", Route: "/reports/daily", Order: 1},
			{Key: "Weekly", Label: "Weekly", Route: "/reports/weekly", Order: routes.DefaultOrder},
			{Key: "Monthly", Label: "Monthly", Route: "/reports/monthly", Order: routes.DefaultOrder},
		}},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("menu mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMenuKeysAreUniqueRouteNames(t *testing.T) {
	tree, err := routes.Default()
	require.NoError(t, err)
	items, err := BuildMenu(tree)
	require.NoError(t, err)

	names := map[string]bool{}
	require.NoError(t, tree.Walk(func(chain []routes.Record) bool {
		names[chain[len(chain)-1].Node.Name] = true
		return false
	}))

	seen := map[string]bool{}
	var visit func([]MenuItem)
	visit = func(items []MenuItem) {
		for i, item := range items {
			require.False(t, seen[item.Key], item.Key)
			seen[item.Key] = true
			require.True(t, names[item.Key], item.Key)
			require.Equal(t, item.HasChildren(), item.Route == "", item.Key)
			if i > 0 {
				require.LessOrEqual(t, items[i-1].Order, item.Order)
			}
			visit(item.Children)
		}
	}
	visit(items)

	require.False(t, seen["ProductCategoriesSettings"])
	require.False(t, seen["ProductCategoriesRules"])
	require.False(t, seen["OrdersDetail"])
	require.False(t, seen["Login"])

	categories, ok := FindItem(items, "ProductCategories")
	require.True(t, ok)
	keys := make([]string, 0, len(categories.Children))
	for _, child := range categories.Children {
		keys = append(keys, child.Key)
	}
	require.Equal(t, []string{"ProductCategoriesAdd", "ProductCategoriesList", "ProductCategoriesTree", "ProductCategoriesImport", "ProductCategoriesExport"}, keys)
}

func TestBuildMenuRejectsCycles(t *testing.T) {
	loop := &routes.Node{Path: "loop", Name: "Loop", Title: "Loop"}
	loop.Children = []*routes.Node{loop}
	tree := &routes.Tree{Routes: []*routes.Node{{Path: "/", Name: "Layout", Layout: true, Children: []*routes.Node{loop}}}}

	_, err := BuildMenu(tree)
	require.ErrorIs(t, err, routes.ErrMalformedRouteTree)
}

func TestBuildMenuWithoutLayout(t *testing.T) {
	items, err := BuildMenu(&routes.Tree{Routes: []*routes.Node{{Path: "/x", Name: "X", Title: "X", Component: "p"}}})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestModelCachesPerTree(t *testing.T) {
	tree := sampleTree()
	model := NewModel()

	first, err := model.Items(tree)
	require.NoError(t, err)
	first[0].Label = "mutated"

	tree.Layout().Children[1].Title = "Start"
	cached, err := model.Items(tree)
	require.NoError(t, err)
	require.Equal(t, "Home", cached[0].Label)

	model.Invalidate()
	rebuilt, err := model.Items(tree)
	require.NoError(t, err)
	require.Equal(t, "Start", rebuilt[0].Label)

	other := sampleTree()
	fresh, err := model.Items(other)
	require.NoError(t, err)
	require.Equal(t, "Home", fresh[0].Label)
}

func TestFilterMenuDropsEmptyGroups(t *testing.T) {
	items, err := BuildMenu(sampleTree())
	require.NoError(t, err)

	filtered := FilterMenu(items, func(item MenuItem) bool {
		return item.Key != "Daily" && item.Key != "Weekly" && item.Key != "Monthly"
	})
	keys := make([]string, 0, len(filtered))
	for _, item := range filtered {
		keys = append(keys, item.Key)
	}
	require.Equal(t, []string{"Home", "Groups"}, keys)

	require.Len(t, items[2].Children, 3)
}
