package navigation

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"finitefield.org/admin-console/internal/admin/routes"
)

// Navigator performs a navigation to path. Implementations may fail for
// unknown paths.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

type keySet map[string]struct{}

func newKeySet(keys []string) keySet {
	set := make(keySet, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

func (s keySet) toggle(key string) {
	if _, ok := s[key]; ok {
		delete(s, key)
		return
	}
	s[key] = struct{}{}
}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s keySet) sorted() []string {
	keys := lo.Keys(map[string]struct{}(s))
	sort.Strings(keys)
	return keys
}

// State tracks the active menu item, its ancestors and which groups are
// expanded in the sidebar and in the floating (collapsed sidebar) menu.
type State struct {
	items         []MenuItem
	location      string
	activeKey     string
	activeParents []string
	expanded      keySet
	floating      keySet
}

// NewState returns navigation state for the menu items.
func NewState(items []MenuItem) *State {
	return RestoreState(items, nil, nil)
}

// RestoreState rebuilds state from previously persisted expand sets.
func RestoreState(items []MenuItem, expanded, floating []string) *State {
	return &State{
		items:    items,
		expanded: newKeySet(expanded),
		floating: newKeySet(floating),
	}
}

// SetMenu swaps the menu items and recomputes the active item for the last
// known location.
func (s *State) SetMenu(items []MenuItem) {
	s.items = items
	if s.location != "" {
		s.UpdateForLocation(s.location)
	}
}

// UpdateForLocation recomputes the active item for path. Only an exact route
// match activates an item. The ancestors of a match are added to the
// expanded set; nothing is ever collapsed here.
func (s *State) UpdateForLocation(path string) {
	s.location = routes.NormalizePath(path)
	key, parents, ok := locate(s.items, s.location, nil)
	if !ok {
		s.activeKey = ""
		s.activeParents = nil
		return
	}
	s.activeKey = key
	s.activeParents = parents
	for _, p := range parents {
		s.expanded[p] = struct{}{}
	}
}

func locate(items []MenuItem, route string, parents []string) (string, []string, bool) {
	for _, item := range items {
		if item.Route != "" && item.Route == route {
			return item.Key, append([]string(nil), parents...), true
		}
		if item.HasChildren() {
			if key, chain, ok := locate(item.Children, route, append(parents, item.Key)); ok {
				return key, chain, true
			}
		}
	}
	return "", nil, false
}

// ActiveKey returns the active item key; ok is false when nothing matched.
func (s *State) ActiveKey() (string, bool) {
	return s.activeKey, s.activeKey != ""
}

// ActiveParentKeys returns the ancestor keys of the active item, root first.
func (s *State) ActiveParentKeys() []string {
	return append([]string(nil), s.activeParents...)
}

// IsActive reports whether key is the active item.
func (s *State) IsActive(key string) bool {
	return key != "" && s.activeKey == key
}

// IsParentActive reports whether key is an ancestor of the active item.
func (s *State) IsParentActive(key string) bool {
	return lo.Contains(s.activeParents, key)
}

// IsExpanded reports whether the sidebar group is open.
func (s *State) IsExpanded(key string) bool {
	return s.expanded.has(key)
}

// IsFloatingExpanded reports whether the floating menu group is open.
func (s *State) IsFloatingExpanded(key string) bool {
	return s.floating.has(key)
}

// ToggleExpanded flips the sidebar group open state.
func (s *State) ToggleExpanded(key string) {
	s.expanded.toggle(key)
}

// ToggleFloatingExpanded flips the floating menu group open state.
func (s *State) ToggleFloatingExpanded(key string) {
	s.floating.toggle(key)
}

// ClearFloatingExpanded closes every floating group.
func (s *State) ClearFloatingExpanded() {
	for k := range s.floating {
		delete(s.floating, k)
	}
}

// ExpandedKeys returns the open sidebar groups, sorted.
func (s *State) ExpandedKeys() []string {
	return s.expanded.sorted()
}

// FloatingExpandedKeys returns the open floating groups, sorted.
func (s *State) FloatingExpandedKeys() []string {
	return s.floating.sorted()
}

// HandleClick dispatches a click on item. Groups toggle open state: the
// floating set for floating clicks, the sidebar set otherwise unless the
// sidebar is collapsed. Leaves navigate to their route; a floating click
// then closes the floating menu whether or not navigation succeeded.
func (s *State) HandleClick(ctx context.Context, item MenuItem, hasChildren, collapsed, floating bool, nav Navigator) error {
	if hasChildren {
		switch {
		case floating:
			s.ToggleFloatingExpanded(item.Key)
		case !collapsed:
			s.ToggleExpanded(item.Key)
		}
		return nil
	}
	if item.Route == "" || nav == nil {
		return nil
	}
	err := nav.Navigate(ctx, item.Route)
	if floating {
		s.ClearFloatingExpanded()
	}
	return err
}
