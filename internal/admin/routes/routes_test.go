package routes

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestJoinPath(t *testing.T) {
	cases := []struct {
		parent, child, want string
	}{
		{"", "dashboard", "/dashboard"},
		{"", "/", "/"},
		{"/", "dashboard", "/dashboard"},
		{"/products", "categories", "/products/categories"},
		{"/products/", "/categories/", "/products/categories"},
		{"/orders", ":id", "/orders/:id"},
		{"", "/login", "/login"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, JoinPath(tc.parent, tc.child), "%q + %q", tc.parent, tc.child)
	}
}

func TestNormalizePath(t *testing.T) {
	require.Equal(t, "/", NormalizePath(""))
	require.Equal(t, "/", NormalizePath("///"))
	require.Equal(t, "/a/b", NormalizePath("a//b/"))
	require.Equal(t, "/a", NormalizePath("/a?x=1#top"))
	require.Equal(t, "/orders", StripParams("/orders/:id"))
	require.Equal(t, "/", StripParams("/:slug"))
}

func TestDefaultTreeLoads(t *testing.T) {
	tree, err := Default()
	require.NoError(t, err)

	layout := tree.Layout()
	require.NotNil(t, layout)
	require.Equal(t, "AppLayout", layout.Name)
	require.Equal(t, "/dashboard", layout.Redirect)

	rec, ok := tree.Lookup("/products/categories/settings/permissions/roles")
	require.True(t, ok)
	require.Equal(t, "ProductCategoriesRolePermissions", rec.Node.Name)
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	doc := `
routes:
  - path: /
    name: Root
    children:
      - path: a
        name: Same
        component: page
      - path: b
        name: Same
        component: page
`
	_, err := Load(strings.NewReader(doc))
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestLoadRejectsUnknownFieldsAndEmptyDocuments(t *testing.T) {
	_, err := Load(strings.NewReader("routes:\n  - path: /\n    name: Root\n    colour: red\n"))
	require.Error(t, err)

	_, err = Load(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMalformedRouteTree)

	_, err = Load(strings.NewReader("routes: []\n"))
	require.ErrorIs(t, err, ErrMalformedRouteTree)
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/console/routes.yaml", []byte("routes:\n  - path: /home\n    name: Home\n    title: Home\n    component: home\n"), 0o644))

	tree, err := LoadFile(fs, "/etc/console/routes.yaml")
	require.NoError(t, err)
	require.Len(t, tree.Routes, 1)
	require.Equal(t, DefaultOrder, tree.Routes[0].SortOrder())

	_, err = LoadFile(fs, "/missing.yaml")
	require.Error(t, err)
}

func TestWalkDetectsCycles(t *testing.T) {
	parent := &Node{Path: "a", Name: "A"}
	child := &Node{Path: "b", Name: "B", Children: []*Node{parent}}
	parent.Children = []*Node{child}
	tree := &Tree{Routes: []*Node{parent}}

	err := tree.Validate()
	require.ErrorIs(t, err, ErrMalformedRouteTree)

	_, ok := tree.Lookup("/nowhere")
	require.False(t, ok)
}

func TestWalkBoundsDepth(t *testing.T) {
	root := &Node{Path: "n0", Name: "n0"}
	cur := root
	for i := 1; i <= MaxDepth+1; i++ {
		next := &Node{Path: "n", Name: "n" + strings.Repeat("x", i)}
		cur.Children = []*Node{next}
		cur = next
	}
	err := (&Tree{Routes: []*Node{root}}).Validate()
	require.ErrorIs(t, err, ErrMalformedRouteTree)
}

func TestMatch(t *testing.T) {
	tree, err := Default()
	require.NoError(t, err)

	chain, params, ok := tree.Match("/orders/42")
	require.True(t, ok)
	require.Equal(t, []string{"AppLayout", "Orders", "OrdersDetail"}, names(chain))
	require.Equal(t, Params{"id": "42"}, params)

	chain, params, ok = tree.Match("/orders/list/")
	require.True(t, ok)
	require.Equal(t, "OrdersList", chain[len(chain)-1].Node.Name)
	require.Empty(t, params)

	chain, _, ok = tree.Match("/")
	require.True(t, ok)
	require.Equal(t, []string{"AppLayout"}, names(chain))

	_, _, ok = tree.Match("/does/not/exist")
	require.False(t, ok)
}

func TestLookupPrefersLooseMatch(t *testing.T) {
	tree := &Tree{Routes: []*Node{{
		Path: "/", Name: "Root", Layout: true,
		Children: []*Node{
			{Path: "items/:id", Name: "ItemDetail", Component: "detail"},
			{Path: "items", Name: "Items", Component: "list"},
		},
	}}}

	rec, ok := tree.Lookup("/items")
	require.True(t, ok)
	require.Equal(t, "ItemDetail", rec.Node.Name)

	rec, ok = tree.Lookup("/items/:id")
	require.True(t, ok)
	require.Equal(t, "ItemDetail", rec.Node.Name)
}

func names(chain []Record) []string {
	out := make([]string, 0, len(chain))
	for _, rec := range chain {
		out = append(out, rec.Node.Name)
	}
	return out
}
