package router

import (
	"strings"

	"github.com/vango-dev/spanav/pkg/routepath"
)

// RootBaseRoute is the default base route. It means "no prefix".
const RootBaseRoute = "/"

// BaseRoutes is an ordered list of prefixes an application may be mounted
// under. Entries are lowercased on construction.
type BaseRoutes []string

// NewBaseRoutes lowercases bases and keeps their order.
// With no arguments it returns the single root base route.
func NewBaseRoutes(bases ...string) BaseRoutes {
	if len(bases) == 0 {
		return BaseRoutes{RootBaseRoute}
	}
	out := make(BaseRoutes, len(bases))
	for i, b := range bases {
		out[i] = strings.ToLower(b)
	}
	return out
}

// Strip removes the first matching base route from path.
//
// A base route matches when path contains it anywhere; only its first
// occurrence is removed, wherever that is. A base route text that reappears
// later in the path (inside a variable value, say) is therefore stripped from
// the wrong place when it also occurs earlier. Callers relying on exact
// positions should use StripAnchored.
//
// When no base route matches, path is returned unchanged with ok == false.
func (b BaseRoutes) Strip(path string) (base, rest string, ok bool) {
	for _, candidate := range b {
		if strings.Contains(path, candidate) {
			return candidate, strings.Replace(path, candidate, "", 1), true
		}
	}
	return "", path, false
}

// StripAnchored is like Strip but only matches a base route that starts the
// path, ignoring leading slashes on both sides. The root base route always
// matches and removes nothing but the leading slashes.
func (b BaseRoutes) StripAnchored(path string) (base, rest string, ok bool) {
	trimmed := routepath.TrimLeadingSlashes(path)
	for _, candidate := range b {
		prefix := routepath.TrimLeadingSlashes(candidate)
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		rest := trimmed[len(prefix):]
		// Only cut on a segment boundary: "account" must not eat "accounts".
		if prefix != "" && rest != "" && rest[0] != '/' && !strings.HasSuffix(prefix, "/") {
			continue
		}
		return candidate, rest, true
	}
	return "", path, false
}

// Contains reports whether base is one of the configured base routes.
func (b BaseRoutes) Contains(base string) bool {
	base = strings.ToLower(base)
	for _, candidate := range b {
		if candidate == base {
			return true
		}
	}
	return false
}
