package routes

import (
	"fmt"
)

// Tree is the full set of top level route declarations.
type Tree struct {
	Routes []*Node `yaml:"routes"`
}

// Layout returns the first top level layout node, if any.
func (t *Tree) Layout() *Node {
	if t == nil {
		return nil
	}
	for _, n := range t.Routes {
		if n != nil && n.Layout {
			return n
		}
	}
	return nil
}

// Validate checks name uniqueness and guards against cycles and runaway
// nesting.
func (t *Tree) Validate() error {
	names := make(map[string]string)
	var dupErr error
	err := t.Walk(func(chain []Record) bool {
		rec := chain[len(chain)-1]
		if rec.Node.Name == "" {
			dupErr = fmt.Errorf("%w: route %q has no name", ErrMalformedRouteTree, rec.Path)
			return true
		}
		if prev, ok := names[rec.Node.Name]; ok {
			dupErr = fmt.Errorf("%w: %q declared at %s and %s", ErrDuplicateName, rec.Node.Name, prev, rec.Path)
			return true
		}
		names[rec.Node.Name] = rec.Path
		return false
	})
	if err != nil {
		return err
	}
	return dupErr
}

// Walk visits every node in pre-order, passing the chain from the top level
// record down to the current node. Returning true from fn stops the walk.
// The chain slice is reused between calls; copy it to retain it.
func (t *Tree) Walk(fn func(chain []Record) bool) error {
	if t == nil {
		return nil
	}
	onPath := make(map[*Node]struct{})
	_, err := walkNodes(t.Routes, "", nil, onPath, fn)
	return err
}

func walkNodes(nodes []*Node, parent string, chain []Record, onPath map[*Node]struct{}, fn func([]Record) bool) (bool, error) {
	if len(chain) >= MaxDepth {
		return false, fmt.Errorf("%w: nesting deeper than %d at %s", ErrMalformedRouteTree, MaxDepth, parent)
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, ok := onPath[n]; ok {
			return false, fmt.Errorf("%w: cycle through %q", ErrMalformedRouteTree, n.Name)
		}
		full := JoinPath(parent, n.Path)
		next := append(chain, Record{Node: n, Path: full})
		if fn(next) {
			return true, nil
		}
		onPath[n] = struct{}{}
		stop, err := walkNodes(n.Children, full, next, onPath, fn)
		delete(onPath, n)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}

// Lookup locates the node for target. Paths are compared with parameter
// segments stripped first, falling back to an exact comparison. The first
// pre-order hit wins.
func (t *Tree) Lookup(target string) (Record, bool) {
	target = NormalizePath(target)
	var loose, exact Record
	var haveLoose, haveExact bool
	_ = t.Walk(func(chain []Record) bool {
		rec := chain[len(chain)-1]
		if !haveLoose && StripParams(rec.Path) == target {
			loose, haveLoose = rec, true
			return true
		}
		if !haveExact && rec.Path == target {
			exact, haveExact = rec, true
		}
		return false
	})
	switch {
	case haveLoose:
		return loose, true
	case haveExact:
		return exact, true
	default:
		return Record{}, false
	}
}

// Match resolves a concrete location into the chain of records that serve
// it, root to leaf. ":name" segments match any single segment. When several
// declarations fit, the one with the fewest parameters wins, then the first
// declared.
func (t *Tree) Match(location string) ([]Record, Params, bool) {
	segs := Segments(location)
	var best []Record
	bestParams := 0
	_ = t.Walk(func(chain []Record) bool {
		rec := chain[len(chain)-1]
		if !rec.Node.Reachable() {
			return false
		}
		n, ok := matchSegments(Segments(rec.Path), segs)
		if !ok {
			return false
		}
		if best == nil || n < bestParams {
			best = append([]Record(nil), chain...)
			bestParams = n
		}
		return false
	})
	if best == nil {
		return nil, nil, false
	}
	leaf := Segments(best[len(best)-1].Path)
	params := Params{}
	for i, seg := range leaf {
		if isParam(seg) {
			params[paramName(seg)] = segs[i]
		}
	}
	return best, params, true
}

func matchSegments(pattern, segs []string) (int, bool) {
	if len(pattern) != len(segs) {
		return 0, false
	}
	params := 0
	for i, p := range pattern {
		if isParam(p) {
			params++
			continue
		}
		if p != segs[i] {
			return 0, false
		}
	}
	return params, true
}
