// Package dom provides the small slice of the DOM the navigation controller
// needs: anchor lookup, attribute reads, click listeners and mouse events.
//
// Element and Node are interfaces so a host can back them with whatever it
// renders into. Document is the implementation used on the server side of the
// thin-client bridge: rendered HTML fragments are parsed with
// golang.org/x/net/html, every element gets a stable data-nav-id, and clicks
// reported by the browser are dispatched by id and bubble to ancestors.
package dom
