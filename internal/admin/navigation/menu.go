// Package navigation derives the sidebar menu, breadcrumbs and smart
// navigation targets from a routes.Tree, and tracks per-user expand state.
package navigation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"finitefield.org/admin-console/internal/admin/routes"
)

// MenuItem is one entry of the sidebar. Route is empty for group headers.
type MenuItem struct {
	Key        string
	Label      string
	Icon       string
	Route      string
	Order      int
	Capability string
	Children   []MenuItem
}

// HasChildren reports whether the item is a group header.
func (m MenuItem) HasChildren() bool {
	return len(m.Children) > 0
}

// BuildMenu turns the children of the tree's layout record into menu items.
// Hidden or untitled nodes are dropped together with their subtrees, siblings
// are ordered by SortOrder with declaration order breaking ties, and only
// leaves carry a route.
func BuildMenu(tree *routes.Tree) ([]MenuItem, error) {
	layout := tree.Layout()
	if layout == nil {
		return nil, nil
	}
	base := routes.JoinPath("", layout.Path)
	return buildItems(layout.Children, base, 1)
}

func buildItems(nodes []*routes.Node, parent string, depth int) ([]MenuItem, error) {
	if depth > routes.MaxDepth {
		return nil, fmt.Errorf("%w: menu nesting deeper than %d at %s", routes.ErrMalformedRouteTree, routes.MaxDepth, parent)
	}
	items := make([]MenuItem, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || n.Hidden || !n.HasTitle() {
			continue
		}
		if !n.HasComponent() && len(n.Children) == 0 {
			continue
		}
		full := routes.JoinPath(parent, n.Path)
		children, err := buildItems(n.Children, full, depth+1)
		if err != nil {
			return nil, err
		}
		item := MenuItem{
			Key:        n.Name,
			Label:      n.Title,
			Icon:       n.Icon,
			Order:      n.SortOrder(),
			Capability: n.Capability,
		}
		if len(children) > 0 {
			item.Children = children
		} else {
			item.Route = full
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	return items, nil
}

// FilterMenu keeps the items accepted by allow. A group header whose
// children are all rejected is dropped as well.
func FilterMenu(items []MenuItem, allow func(MenuItem) bool) []MenuItem {
	return lo.FilterMap(items, func(item MenuItem, _ int) (MenuItem, bool) {
		if !allow(item) {
			return MenuItem{}, false
		}
		if !item.HasChildren() {
			return item, true
		}
		item.Children = FilterMenu(item.Children, allow)
		return item, len(item.Children) > 0
	})
}

// FindItem returns the item with key, searching depth-first.
func FindItem(items []MenuItem, key string) (MenuItem, bool) {
	for _, item := range items {
		if item.Key == key {
			return item, true
		}
		if found, ok := FindItem(item.Children, key); ok {
			return found, true
		}
	}
	return MenuItem{}, false
}

// Model caches the menu built from a tree until a different tree is
// supplied or Invalidate is called.
type Model struct {
	mu    sync.RWMutex
	tree  *routes.Tree
	items []MenuItem
	valid bool
}

// NewModel returns an empty menu cache.
func NewModel() *Model {
	return &Model{}
}

// Items returns the menu for tree, rebuilding it only when tree differs from
// the one it was last built from.
func (m *Model) Items(tree *routes.Tree) ([]MenuItem, error) {
	m.mu.RLock()
	if m.valid && m.tree == tree {
		items := cloneItems(m.items)
		m.mu.RUnlock()
		return items, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.tree == tree {
		return cloneItems(m.items), nil
	}
	items, err := BuildMenu(tree)
	if err != nil {
		return nil, err
	}
	m.tree = tree
	m.items = items
	m.valid = true
	return cloneItems(items), nil
}

// Invalidate drops the cached menu so the next Items call rebuilds it.
func (m *Model) Invalidate() {
	m.mu.Lock()
	m.valid = false
	m.items = nil
	m.tree = nil
	m.mu.Unlock()
}

func cloneItems(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	for i, item := range items {
		item.Children = cloneItems(item.Children)
		out[i] = item
	}
	return out
}
