// Package routes models the console's declarative route tree. The tree is
// read-only once loaded; menus, breadcrumbs and smart navigation are all
// derived from it.
package routes

import (
	"errors"
	"strings"
)

// DefaultOrder is used for nodes without an explicit order; they sort last.
const DefaultOrder = 999

// MaxDepth bounds tree traversal so a cyclic tree fails instead of hanging.
const MaxDepth = 64

var (
	// ErrMalformedRouteTree reports cycles, runaway nesting or unnamed nodes.
	ErrMalformedRouteTree = errors.New("routes: malformed route tree")
	// ErrDuplicateName reports two nodes sharing a name.
	ErrDuplicateName = errors.New("routes: duplicate route name")
)

// Node is a single route declaration.
type Node struct {
	Path       string  `yaml:"path"`
	Name       string  `yaml:"name"`
	Title      string  `yaml:"title,omitempty"`
	Icon       string  `yaml:"icon,omitempty"`
	Order      *int    `yaml:"order,omitempty"`
	Hidden     bool    `yaml:"hidden,omitempty"`
	Component  string  `yaml:"component,omitempty"`
	Redirect   string  `yaml:"redirect,omitempty"`
	Layout     bool    `yaml:"layout,omitempty"`
	Capability string  `yaml:"capability,omitempty"`
	Children   []*Node `yaml:"children,omitempty"`
}

// SortOrder returns the declared order or DefaultOrder.
func (n *Node) SortOrder() int {
	if n == nil || n.Order == nil {
		return DefaultOrder
	}
	return *n.Order
}

// HasComponent reports whether the node renders a page.
func (n *Node) HasComponent() bool {
	return n != nil && strings.TrimSpace(n.Component) != ""
}

// HasTitle reports whether the node carries a visible title.
func (n *Node) HasTitle() bool {
	return n != nil && strings.TrimSpace(n.Title) != ""
}

// IsContainer reports whether the node only groups children.
func (n *Node) IsContainer() bool {
	return n != nil && !n.HasComponent() && len(n.Children) > 0
}

// Reachable reports whether the node can render anything, itself or via a
// descendant. Nodes without component, redirect and children are dead.
func (n *Node) Reachable() bool {
	if n == nil {
		return false
	}
	return n.HasComponent() || strings.TrimSpace(n.Redirect) != "" || len(n.Children) > 0
}

// Params holds values captured from ":name" segments.
type Params map[string]string

// Record is one element of a matched chain: a node plus its joined path.
type Record struct {
	Node *Node
	Path string
}

// Order is a helper for building nodes in code.
func Order(v int) *int {
	return &v
}
