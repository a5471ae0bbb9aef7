package navigation

import (
	"errors"
	"net/url"
	"strings"

	spanerrors "github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/routepath"
	"github.com/vango-dev/spanav/pkg/router"
)

// Navigation errors. Controller methods return them wrapped in a coded
// *errors.Error, so test with errors.Is.
var (
	ErrNoMatchingRoute     = errors.New("no valid route found")
	ErrMissingRenderTarget = errors.New("no container found")
	ErrReentrantInit       = errors.New("navigation started from a route handler")
	ErrForeignOrigin       = errors.New("history entry on a different origin")
)

// State is the result of resolving a location.
type State struct {
	// BaseRoute is the base route stripped from the path, or "" when none
	// matched.
	BaseRoute string

	// Route is the matched route key.
	Route string

	// Variables holds the placeholder values taken from the path.
	Variables router.Variables

	// Query is the lowercased query string including its "?".
	Query string

	// URL is the lowercased pathname followed by Query. It is what the page
	// view is reported under.
	URL string
}

// clone returns a copy that shares nothing with s.
func (s State) clone() State {
	s.Variables = s.Variables.Clone()
	return s
}

// Resolve computes the State for loc. Path and query are lowercased before
// matching. Anything after a "?" or "#" in loc.Pathname is ignored, so a
// location that is only a fragment past the root resolves to the root route.
func Resolve[H any](loc Location, table *router.Table[H], bases router.BaseRoutes) (State, error) {
	path, _, _ := routepath.SplitLocation(loc.Pathname)
	path = strings.ToLower(path)
	query := strings.ToLower(loc.Search)

	m, ok := table.Resolve(path, bases)
	if !ok {
		return State{}, spanerrors.New("N001").
			WithDetailf("no route matches %q", path).
			Wrap(ErrNoMatchingRoute)
	}

	return State{
		BaseRoute: m.BaseRoute,
		Route:     m.Route,
		Variables: m.Variables,
		Query:     query,
		URL:       path + query,
	}, nil
}

// Click describes a click on page content.
type Click struct {
	// Href is the href attribute of the nearest enclosing anchor.
	Href string

	// HasAnchor reports whether there is an enclosing anchor with an href.
	HasAnchor bool

	// NewTab reports whether the click asks for a new tab or window.
	NewTab bool
}

// Intercept decides whether click is handled as in-app navigation. It
// returns the href to navigate to and true when all of these hold:
//
//   - the click happened inside an anchor with an href;
//   - the href is not a fragment link ("#...");
//   - the click is not a new tab gesture;
//   - the href stays on origin;
//   - the href's path resolves to a route.
//
// Otherwise the browser should follow the link itself.
func Intercept[H any](click Click, origin string, table *router.Table[H], bases router.BaseRoutes) (string, bool) {
	if !click.HasAnchor {
		return "", false
	}
	if strings.HasPrefix(click.Href, "#") {
		return "", false
	}
	if click.NewTab {
		return "", false
	}
	if !routepath.SameOrigin(click.Href, origin) {
		return "", false
	}

	candidate := click.Href
	if u, err := url.Parse(click.Href); err == nil && u.Host != "" {
		candidate = u.EscapedPath()
		if u.RawQuery != "" {
			candidate += "?" + u.RawQuery
		}
	}
	path := strings.ToLower(routepath.CompletePath(candidate))
	if _, ok := table.Resolve(path, bases); !ok {
		return "", false
	}
	return click.Href, true
}
