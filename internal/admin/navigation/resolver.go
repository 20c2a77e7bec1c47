package navigation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"finitefield.org/admin-console/internal/admin/routes"
)

// ErrNavigationFailed is returned by NavigateSmart when neither the resolved
// nor the requested target could be navigated to.
var ErrNavigationFailed = errors.New("navigation: navigation failed")

// Resolver finds the first renderable page below container routes.
type Resolver struct {
	tree  *routes.Tree
	allow func(*routes.Node) bool
}

// NewResolver returns a resolver over tree.
func NewResolver(tree *routes.Tree) *Resolver {
	return &Resolver{tree: tree}
}

// WithFilter returns a copy of the resolver that also skips nodes rejected
// by allow, e.g. pages the current user may not open.
func (r *Resolver) WithFilter(allow func(*routes.Node) bool) *Resolver {
	cp := *r
	cp.allow = allow
	return &cp
}

// Resolve returns the page to open for target. A target that renders a page
// resolves to itself. A container resolves to its first renderable
// descendant in pre-order, visiting children by SortOrder and skipping
// hidden ones. ok is false for unknown targets, dead-end containers and
// malformed trees.
func (r *Resolver) Resolve(target string) (string, bool) {
	found, ok, err := r.Find(target)
	return found, ok && err == nil
}

// Find is Resolve that also reports routes.ErrMalformedRouteTree when the
// subtree below target loops back on itself.
func (r *Resolver) Find(target string) (string, bool, error) {
	if r == nil || r.tree == nil {
		return "", false, nil
	}
	rec, ok := r.tree.Lookup(target)
	if !ok || !r.permitted(rec.Node) {
		return "", false, nil
	}
	if rec.Node.HasComponent() {
		if rec.Path != routes.StripParams(rec.Path) {
			return routes.NormalizePath(target), true, nil
		}
		return rec.Path, true, nil
	}
	onPath := map[*routes.Node]struct{}{rec.Node: {}}
	return r.firstRenderable(rec.Node, rec.Path, onPath)
}

func (r *Resolver) firstRenderable(n *routes.Node, base string, onPath map[*routes.Node]struct{}) (string, bool, error) {
	if len(onPath) > routes.MaxDepth {
		return "", false, fmt.Errorf("%w: nesting deeper than %d at %s", routes.ErrMalformedRouteTree, routes.MaxDepth, base)
	}
	children := append([]*routes.Node(nil), n.Children...)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].SortOrder() < children[j].SortOrder()
	})
	for _, child := range children {
		if child == nil {
			continue
		}
		if _, ok := onPath[child]; ok {
			return "", false, fmt.Errorf("%w: cycle through %q", routes.ErrMalformedRouteTree, child.Name)
		}
		if child.Hidden || !r.permitted(child) {
			continue
		}
		full := routes.JoinPath(base, child.Path)
		if child.HasComponent() {
			return full, true, nil
		}
		if len(child.Children) > 0 {
			onPath[child] = struct{}{}
			found, ok, err := r.firstRenderable(child, full, onPath)
			delete(onPath, child)
			if err != nil || ok {
				return found, ok, err
			}
		}
	}
	return "", false, nil
}

func (r *Resolver) permitted(n *routes.Node) bool {
	return r.allow == nil || r.allow(n)
}

// NavigateSmart navigates to the resolved page for target, or to target
// itself when nothing resolves. A failed navigation to a resolved page is
// retried with the original target. It returns the path navigated to.
func (r *Resolver) NavigateSmart(ctx context.Context, nav Navigator, target string) (string, error) {
	dest := target
	resolved, ok, err := r.Find(target)
	if err != nil {
		return target, fmt.Errorf("%w: %s: %w", ErrNavigationFailed, target, err)
	}
	if ok {
		dest = resolved
	}
	err = nav.Navigate(ctx, dest)
	if err == nil {
		return dest, nil
	}
	if dest == target {
		return target, fmt.Errorf("%w: %s: %w", ErrNavigationFailed, target, err)
	}
	if retryErr := nav.Navigate(ctx, target); retryErr != nil {
		return target, fmt.Errorf("%w: %s: %w", ErrNavigationFailed, target, retryErr)
	}
	return target, nil
}
