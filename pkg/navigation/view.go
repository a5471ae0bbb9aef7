package navigation

import "github.com/vango-dev/spanav/pkg/dom"

// View is handed to every route handler. The handler renders its content and
// then calls Loaded with the new node, which wires link interception on it.
type View struct {
	hooks []func(dom.Node)
	value any
}

// NewView creates an empty view.
func NewView() *View {
	return &View{}
}

// OnViewLoaded registers fn to run whenever Loaded is called.
func (v *View) OnViewLoaded(fn func(dom.Node)) {
	v.hooks = append(v.hooks, fn)
}

// Loaded reports that node has been attached to the page.
func (v *View) Loaded(node dom.Node) {
	for _, fn := range v.hooks {
		fn(node)
	}
}

// Value returns the host value attached with SetValue.
func (v *View) Value() any {
	return v.value
}

// SetValue attaches a host-specific value, such as a renderer, to the view.
func (v *View) SetValue(value any) {
	v.value = value
}
