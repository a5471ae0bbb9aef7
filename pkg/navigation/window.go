package navigation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/spanav/pkg/dom"
	"github.com/vango-dev/spanav/pkg/routepath"
)

// Location mirrors the parts of window.location the controller reads.
type Location struct {
	// Href is the full URL.
	Href string

	// Origin is "scheme://host".
	Origin string

	// Pathname is the path, starting with "/".
	Pathname string

	// Search is the query string including its "?", or "".
	Search string

	// Hash is the fragment including its "#", or "".
	Hash string
}

// ParseLocation builds a Location from an absolute URL.
func ParseLocation(href string) (Location, error) {
	u, err := url.Parse(href)
	if err != nil {
		return Location{}, fmt.Errorf("parse location: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("parse location: %q is not an absolute URL", href)
	}

	loc := Location{
		Href:     href,
		Origin:   strings.ToLower(u.Scheme + "://" + u.Host),
		Pathname: u.EscapedPath(),
	}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	if u.RawQuery != "" {
		loc.Search = "?" + u.RawQuery
	}
	if f := u.EscapedFragment(); f != "" {
		loc.Hash = "#" + f
	}
	return loc, nil
}

// LocationFromPath builds an origin-less Location from a path with optional
// query and fragment, such as "/account/orders?id=1".
func LocationFromPath(raw string) Location {
	path, query, fragment := routepath.SplitLocation(raw)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc := Location{Href: raw, Pathname: path, Search: query}
	if query == "?" {
		loc.Search = ""
	}
	if fragment != "" {
		loc.Hash = "#" + fragment
	}
	return loc
}

// PopStateEvent is delivered when the user moves through history.
type PopStateEvent struct {
	// Href is the location being restored.
	Href string

	defaultPrevented bool
}

// PreventDefault suppresses the host's own restoration of the page.
func (e *PopStateEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *PopStateEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Window is the host's location and history provider.
type Window interface {
	// Location returns the current location.
	Location() Location

	// PushState adds href to the history and makes it current.
	// Relative hrefs are resolved against the current location.
	PushState(href string) error

	// ReplaceState replaces the current history entry with href.
	ReplaceState(href string) error

	// OnPopState registers a listener for back and forward navigation.
	OnPopState(fn func(*PopStateEvent))

	// ScrollTo scrolls the viewport.
	ScrollTo(x, y int)
}

// RenderTarget is the element route handlers render into.
type RenderTarget interface {
	// Clear removes the previous view's content.
	Clear()
}

// Document answers the DOM questions asked while handling a click.
type Document interface {
	// Closest returns el or its nearest ancestor with the given tag.
	Closest(el dom.Element, tag string) dom.Element

	// IsNewTabClick reports whether the click opens a new tab or window.
	IsNewTabClick(ev *dom.MouseEvent) bool
}

// domDocument implements Document with the dom package helpers.
type domDocument struct{}

func (domDocument) Closest(el dom.Element, tag string) dom.Element {
	return dom.Closest(el, tag)
}

func (domDocument) IsNewTabClick(ev *dom.MouseEvent) bool {
	return dom.IsNewTabClick(ev)
}
