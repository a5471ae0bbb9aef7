package router

import "github.com/vango-dev/spanav/pkg/routepath"

// ResolveRoute returns the key of the first route in table matching
// currentPath, which must already be lowercased.
func ResolveRoute[H any](currentPath string, bases BaseRoutes, table *Table[H]) (string, bool) {
	m, ok := table.Resolve(currentPath, bases)
	if !ok {
		return "", false
	}
	return m.Route, true
}

// ExtractPathVariables strips the first matching base route from currentPath
// and extracts the placeholders declared by route, by index.
// It uses the default base route policy and does not need a table.
func ExtractPathVariables(currentPath, route string, bases BaseRoutes) Variables {
	_, rest, _ := bases.Strip(currentPath)
	return ParsePattern(route).Extract(routepath.Segments(rest))
}

// ExtractCompletePath returns the part of a link target that is matched
// against the route table.
func ExtractCompletePath(href string) string {
	return routepath.CompletePath(href)
}
