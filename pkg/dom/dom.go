package dom

import "strings"

// Element is a DOM element.
type Element interface {
	// Tag returns the lowercased tag name.
	Tag() string

	// Attr returns the value of an attribute.
	Attr(name string) (string, bool)

	// Parent returns the parent element, or nil at the top.
	Parent() Element

	// OnClick registers a click listener.
	OnClick(fn func(*MouseEvent))
}

// Node is an element that can be searched.
type Node interface {
	Element

	// QueryAll returns every descendant with the given tag, in document order.
	QueryAll(tag string) []Element
}

// Mouse buttons as reported by MouseEvent.button.
const (
	ButtonPrimary = 0
	ButtonMiddle  = 1
)

// MouseEvent is a click delivered to listeners.
type MouseEvent struct {
	Target Element
	Button int
	Ctrl   bool
	Meta   bool
	Shift  bool
	Alt    bool

	defaultPrevented bool
}

// PreventDefault cancels the browser's default action for the event.
func (e *MouseEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *MouseEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Closest returns el or its nearest ancestor with the given tag.
func Closest(el Element, tag string) Element {
	tag = strings.ToLower(tag)
	for el != nil {
		if el.Tag() == tag {
			return el
		}
		el = el.Parent()
	}
	return nil
}

// IsNewTabClick reports whether the click asks for a new tab or window:
// a modifier key is held or the middle button was used.
func IsNewTabClick(e *MouseEvent) bool {
	return e.Meta || e.Ctrl || e.Shift || e.Button == ButtonMiddle
}
