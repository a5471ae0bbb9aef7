package bridge

import (
	"github.com/vango-dev/spanav/pkg/dom"
	"github.com/vango-dev/spanav/pkg/navigation"
)

// Page renders into the browser of the connection a view belongs to.
type Page struct {
	s    *session
	view *navigation.View
}

// PageFrom returns the Page attached to a view created by the bridge.
func PageFrom(view *navigation.View) (*Page, bool) {
	if view == nil {
		return nil, false
	}
	p, ok := view.Value().(*Page)
	return p, ok
}

// Render appends fragment to the page and wires its links.
func (p *Page) Render(fragment string) error {
	node, err := p.s.doc.Append(fragment)
	if err != nil {
		return err
	}
	html, err := dom.HTML(node)
	if err != nil {
		return err
	}
	if err := p.s.send(Frame{Type: FrameRender, HTML: html}); err != nil {
		return err
	}
	p.view.Loaded(node)
	return nil
}

// Href returns the page's current location.
func (p *Page) Href() string {
	return p.s.window.loc.Href
}
