package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IDAttr is the attribute carrying an element's id within its Document.
const IDAttr = "data-nav-id"

// ErrUnknownElement is returned by Dispatch for ids the document never issued
// or has since discarded.
var ErrUnknownElement = errors.New("unknown element")

// Document is an HTML-backed element tree. Fragments are appended as they are
// rendered and every element receives a document-unique IDAttr.
//
// A Document is not safe for concurrent use.
type Document struct {
	root   *element
	byID   map[string]*element
	nextID int
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	d := &Document{byID: make(map[string]*element)}
	d.root = &element{doc: d}
	return d
}

// Parse creates a document holding a single fragment.
func Parse(fragment string) (*Document, error) {
	d := NewDocument()
	if _, err := d.Append(fragment); err != nil {
		return nil, err
	}
	return d, nil
}

// Root returns the document root. It has no tag and no parent.
func (d *Document) Root() Node {
	return d.root
}

// Reset discards all content. Ids issued before Reset are never reused.
func (d *Document) Reset() {
	d.root.children = nil
	d.root.listeners = nil
	d.byID = make(map[string]*element)
}

// Append parses fragment as body content and adds it to the document.
// The returned Node groups the new top-level elements; it has no tag of its
// own and its parent is the document root.
func (d *Document) Append(fragment string) (Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	group := &element{doc: d, parent: d.root}
	group.roots = nodes
	for _, n := range nodes {
		d.adopt(group, n)
	}
	d.root.children = append(d.root.children, group)
	return group, nil
}

// adopt wraps n and its element descendants, attaching them under parent.
func (d *Document) adopt(parent *element, n *html.Node) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			d.adopt(parent, c)
		}
		return
	}

	d.nextID++
	el := &element{
		doc:    d,
		node:   n,
		parent: parent,
		id:     "n" + strconv.Itoa(d.nextID),
	}
	setAttr(n, IDAttr, el.id)
	d.byID[el.id] = el
	parent.children = append(parent.children, el)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.adopt(el, c)
	}
}

// Lookup returns the element with the given id.
func (d *Document) Lookup(id string) (Element, bool) {
	el, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Dispatch delivers a click to the element with the given id and bubbles it
// through every ancestor up to the root. ev.Target is set to that element.
func (d *Document) Dispatch(id string, ev *MouseEvent) error {
	el, ok := d.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	ev.Target = el
	for cur := el; cur != nil; cur = cur.parent {
		listeners := append([]func(*MouseEvent){}, cur.listeners...)
		for _, fn := range listeners {
			fn(ev)
		}
	}
	return nil
}

// Render serialises the whole document, ids included.
func (d *Document) Render() (string, error) {
	return d.root.HTML()
}

// element implements Node. A nil node marks the root or a fragment group.
type element struct {
	doc       *Document
	node      *html.Node
	roots     []*html.Node
	parent    *element
	children  []*element
	id        string
	listeners []func(*MouseEvent)
}

func (e *element) Tag() string {
	if e.node == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

func (e *element) Attr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (e *element) Parent() Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *element) OnClick(fn func(*MouseEvent)) {
	e.listeners = append(e.listeners, fn)
}

func (e *element) QueryAll(tag string) []Element {
	tag = strings.ToLower(tag)
	var out []Element
	var walk func(*element)
	walk = func(cur *element) {
		for _, c := range cur.children {
			if c.Tag() == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// ID returns the element's document id.
func (e *element) ID() string {
	return e.id
}

// HTML renders the element, or for the root and fragment groups, their
// content.
func (e *element) HTML() (string, error) {
	var b strings.Builder
	switch {
	case e.node != nil:
		if err := html.Render(&b, e.node); err != nil {
			return "", err
		}
	case e.roots != nil:
		for _, n := range e.roots {
			if err := html.Render(&b, n); err != nil {
				return "", err
			}
		}
	default:
		for _, c := range e.children {
			s, err := c.HTML()
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

// HTML renders n if it was produced by a Document.
func HTML(n Element) (string, error) {
	el, ok := n.(*element)
	if !ok {
		return "", fmt.Errorf("dom: %T is not a document element", n)
	}
	return el.HTML()
}

// ID returns the document id of an element produced by a Document.
func ID(n Element) (string, bool) {
	el, ok := n.(*element)
	if !ok || el.id == "" {
		return "", false
	}
	return el.id, true
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
