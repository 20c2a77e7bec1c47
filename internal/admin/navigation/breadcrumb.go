package navigation

import (
	"strings"

	"finitefield.org/admin-console/internal/admin/routes"
)

// Breadcrumb is one step of the trail shown above a page.
type Breadcrumb struct {
	Label string
	Icon  string
	Path  string
}

// BuildBreadcrumbs derives the trail for a matched chain. The layout record
// and untitled records are skipped. Parameter segments in a record's path
// are replaced with the location's segment at the same index.
func BuildBreadcrumbs(chain []routes.Record, location string) []Breadcrumb {
	actual := routes.Segments(location)
	crumbs := make([]Breadcrumb, 0, len(chain))
	for _, rec := range chain {
		if rec.Node == nil || rec.Node.Layout || !rec.Node.HasTitle() {
			continue
		}
		crumbs = append(crumbs, Breadcrumb{
			Label: rec.Node.Title,
			Icon:  rec.Node.Icon,
			Path:  substituteParams(rec.Path, actual),
		})
	}
	return crumbs
}

func substituteParams(declared string, actual []string) string {
	segs := routes.Segments(declared)
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") && i < len(actual) {
			segs[i] = actual[i]
		}
	}
	return "/" + strings.Join(segs, "/")
}

// DocumentTitle returns "<title> - <fallback>" for the deepest titled record
// in the chain, or fallback alone when none carries a title.
func DocumentTitle(chain []routes.Record, fallback string) string {
	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i].Node
		if node == nil || !node.HasTitle() {
			continue
		}
		if strings.TrimSpace(fallback) == "" {
			return node.Title
		}
		return node.Title + " - " + fallback
	}
	return fallback
}
