package navigation

import (
	"fmt"
	"net/url"
)

// MemoryWindow is an in-memory Window with a browser-like history stack.
// It is used by tests and by hosts without a real browser.
type MemoryWindow struct {
	entries   []Location
	index     int
	listeners []func(*PopStateEvent)
	scrollX   int
	scrollY   int
}

// NewMemoryWindow creates a window whose only history entry is href, which
// must be an absolute URL.
func NewMemoryWindow(href string) (*MemoryWindow, error) {
	loc, err := ParseLocation(href)
	if err != nil {
		return nil, err
	}
	return &MemoryWindow{entries: []Location{loc}}, nil
}

// Location returns the current history entry.
func (w *MemoryWindow) Location() Location {
	return w.entries[w.index]
}

// resolve turns href into a Location on the current origin.
func (w *MemoryWindow) resolve(href string) (Location, error) {
	current := w.Location()
	base, err := url.Parse(current.Href)
	if err != nil {
		return Location{}, fmt.Errorf("current location: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return Location{}, fmt.Errorf("history entry %q: %w", href, err)
	}
	loc, err := ParseLocation(base.ResolveReference(ref).String())
	if err != nil {
		return Location{}, err
	}
	if loc.Origin != current.Origin {
		return Location{}, fmt.Errorf("%w: %s", ErrForeignOrigin, href)
	}
	return loc, nil
}

// PushState drops any forward entries and appends href.
func (w *MemoryWindow) PushState(href string) error {
	loc, err := w.resolve(href)
	if err != nil {
		return err
	}
	w.entries = append(w.entries[:w.index+1], loc)
	w.index++
	return nil
}

// ReplaceState replaces the current entry with href.
func (w *MemoryWindow) ReplaceState(href string) error {
	loc, err := w.resolve(href)
	if err != nil {
		return err
	}
	w.entries[w.index] = loc
	return nil
}

// OnPopState registers fn for Back, Forward and Go.
func (w *MemoryWindow) OnPopState(fn func(*PopStateEvent)) {
	w.listeners = append(w.listeners, fn)
}

// ScrollTo records the scroll position.
func (w *MemoryWindow) ScrollTo(x, y int) {
	w.scrollX, w.scrollY = x, y
}

// Scroll returns the last position passed to ScrollTo.
func (w *MemoryWindow) Scroll() (x, y int) {
	return w.scrollX, w.scrollY
}

// Len returns the number of history entries.
func (w *MemoryWindow) Len() int {
	return len(w.entries)
}

// Back moves one entry back. It reports false at the start of the history.
func (w *MemoryWindow) Back() bool {
	return w.Go(-1)
}

// Forward moves one entry forward. It reports false at the end of the history.
func (w *MemoryWindow) Forward() bool {
	return w.Go(1)
}

// Go moves delta entries through the history and fires popstate.
// Moves outside the history are ignored.
func (w *MemoryWindow) Go(delta int) bool {
	next := w.index + delta
	if delta == 0 || next < 0 || next >= len(w.entries) {
		return false
	}
	w.index = next

	ev := &PopStateEvent{Href: w.entries[next].Href}
	for _, fn := range w.listeners {
		fn(ev)
	}
	return true
}
