// Package routepath holds the string-level location helpers shared by the
// route matcher and the navigation controller.
//
// Nothing here decodes or re-encodes URLs; paths are taken exactly as the host
// environment reports them.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Path validation errors.
var (
	ErrBackslashInPath = errors.New("path contains backslash")
	ErrNullByteInPath  = errors.New("path contains null byte")
)

// SplitLocation splits a location (path onward) into its path, query and
// fragment parts. The fragment is cut first, so a "?" inside the fragment
// stays in the fragment. The query keeps its leading "?" and the fragment is
// returned without its "#".
//
//	SplitLocation("/account/orders?id=1#top") → "/account/orders", "?id=1", "top"
func SplitLocation(input string) (path, query, fragment string) {
	rest, fragment, _ := strings.Cut(input, "#")
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		return rest[:i], rest[i:], fragment
	}
	return rest, "", fragment
}

// TrimLeadingSlashes removes every leading "/" from path.
func TrimLeadingSlashes(path string) string {
	return strings.TrimLeft(path, "/")
}

// Segments strips leading slashes and splits the remainder on "/".
// The result always has at least one element; "" yields [""].
func Segments(path string) []string {
	return strings.Split(TrimLeadingSlashes(path), "/")
}

// CompletePath returns the route-relevant part of a link target: a single
// leading "/" is dropped and everything from the first "?" on is cut.
//
//	CompletePath("/account/24543?tab=orders") → "account/24543"
func CompletePath(href string) string {
	p := strings.TrimPrefix(href, "/")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}

// Origin returns the "scheme://host" origin of an absolute or
// protocol-relative href, lowercased. Relative hrefs have no origin and
// report ok == false.
func Origin(href string) (origin string, ok bool) {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme == "" {
		return strings.ToLower("//" + u.Host), true
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// SameOrigin reports whether following href keeps the page on origin.
// Relative hrefs always do. Protocol-relative hrefs are compared by host only.
// Hrefs that cannot be parsed, and scheme-only hrefs such as mailto: or tel:,
// are treated as foreign.
func SameOrigin(href, origin string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Host == "" {
		return false
	}
	linkOrigin, ok := Origin(href)
	if !ok {
		return true
	}
	origin = strings.ToLower(origin)
	if strings.HasPrefix(linkOrigin, "//") {
		_, host, found := strings.Cut(origin, "//")
		if !found {
			return false
		}
		return linkOrigin[2:] == host
	}
	return linkOrigin == origin
}

// ValidateNavPath rejects paths that no browser would report as a pathname.
// It is applied to locations received from remote clients before they reach
// the matcher.
func ValidateNavPath(path string) error {
	if strings.Contains(path, "\\") {
		return ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return ErrNullByteInPath
	}
	return nil
}
