package palette

import (
	"fmt"
	"strings"
)

// CSSVariables renders the palette as custom property declarations, one per
// line, e.g. "--primary-500: #10b981;". An empty prefix defaults to "primary".
func CSSVariables(p Palette, prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "-")
	if prefix == "" {
		prefix = "primary"
	}
	var b strings.Builder
	for _, shade := range p {
		fmt.Fprintf(&b, "--%s-%d: %s;\n", prefix, shade.Stop, shade.Hex)
	}
	fmt.Fprintf(&b, "--%s: var(--%s-%d);\n", prefix, prefix, midStop)
	return b.String()
}
