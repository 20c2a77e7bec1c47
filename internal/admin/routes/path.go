package routes

import "strings"

// JoinPath joins a child segment onto its parent's full path. Top level
// routes (empty parent) are rooted at "/". Repeated slashes collapse and a
// trailing slash is dropped.
func JoinPath(parent, child string) string {
	if parent == "" {
		return NormalizePath("/" + child)
	}
	return NormalizePath(parent + "/" + child)
}

// NormalizePath returns p with a leading slash, no repeated slashes and no
// trailing slash (except for the root).
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// StripParams removes every ":param" segment from p.
func StripParams(p string) string {
	segs := Segments(p)
	kept := segs[:0]
	for _, s := range segs {
		if isParam(s) {
			continue
		}
		kept = append(kept, s)
	}
	return "/" + strings.Join(kept, "/")
}

// Segments splits a normalised path into its non-empty segments.
func Segments(p string) []string {
	p = NormalizePath(p)
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

func isParam(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}

func paramName(seg string) string {
	return strings.TrimSuffix(strings.TrimPrefix(seg, ":"), "?")
}
