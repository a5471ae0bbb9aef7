package bridge

import (
	"fmt"
	"net/url"

	"github.com/vango-dev/spanav/pkg/navigation"
	"github.com/vango-dev/spanav/pkg/routepath"
)

// window is the browser's location as last reported by the client. History
// changes are sent to the client as frames.
type window struct {
	s         *session
	loc       navigation.Location
	listeners []func(*navigation.PopStateEvent)
}

func (w *window) Location() navigation.Location {
	return w.loc
}

// resolve parses href relative to the current location and checks that it
// stays on the current origin.
func (w *window) resolve(href string) (navigation.Location, error) {
	base, err := url.Parse(w.loc.Href)
	if err != nil {
		return navigation.Location{}, fmt.Errorf("current location: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return navigation.Location{}, fmt.Errorf("history entry %q: %w", href, err)
	}
	loc, err := navigation.ParseLocation(base.ResolveReference(ref).String())
	if err != nil {
		return navigation.Location{}, err
	}
	if loc.Origin != w.loc.Origin {
		return navigation.Location{}, fmt.Errorf("%w: %s", navigation.ErrForeignOrigin, href)
	}
	return loc, nil
}

func (w *window) PushState(href string) error {
	return w.update(FramePush, href)
}

func (w *window) ReplaceState(href string) error {
	return w.update(FrameReplace, href)
}

func (w *window) update(t FrameType, href string) error {
	loc, err := w.resolve(href)
	if err != nil {
		return err
	}
	if err := w.s.send(Frame{Type: t, Href: loc.Href}); err != nil {
		return err
	}
	w.loc = loc
	return nil
}

func (w *window) OnPopState(fn func(*navigation.PopStateEvent)) {
	w.listeners = append(w.listeners, fn)
}

func (w *window) ScrollTo(x, y int) {
	if err := w.s.send(Frame{Type: FrameScroll, X: x, Y: y}); err != nil {
		w.s.logger.Debug("scroll frame not sent", "error", err)
	}
}

// popState moves to href as reported by the client and notifies listeners.
// The origin is fixed by the hello frame; history entries never change it.
func (w *window) popState(href string) error {
	loc, err := parseClientLocation(href)
	if err != nil {
		return err
	}
	if loc.Origin != w.loc.Origin {
		return fmt.Errorf("%w: %s", navigation.ErrForeignOrigin, href)
	}
	w.loc = loc

	ev := &navigation.PopStateEvent{Href: loc.Href}
	for _, fn := range w.listeners {
		fn(ev)
	}
	return nil
}

// parseClientLocation parses and validates a location sent by a client.
func parseClientLocation(href string) (navigation.Location, error) {
	loc, err := navigation.ParseLocation(href)
	if err != nil {
		return navigation.Location{}, err
	}
	if err := routepath.ValidateNavPath(loc.Pathname); err != nil {
		return navigation.Location{}, err
	}
	return loc, nil
}
