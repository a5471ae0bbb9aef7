// Package navigation implements the client-side navigation controller of a
// single page application.
//
// A Controller owns the current navigation State. It reads the location from
// a Window, resolves it against a route table, clears the RenderTarget and
// calls the matched Handler. Afterwards the page view is reported to an
// optional analytics sink.
//
// Three kinds of events lead to a new resolve:
//
//   - an explicit Init or Navigate call;
//   - a popstate event delivered by the Window (back and forward buttons);
//   - a click on an anchor wired with SetupView whose target is a known
//     route on the current origin.
//
// The decisions behind these transitions are exposed as pure functions,
// Resolve and Intercept, so they can be exercised without a Window or DOM.
//
// # Usage
//
//	table := navigation.NewTable()
//	table.MustAdd("", showHome)
//	table.MustAdd("{accountNumber}/order/{orderNumber}", showOrder)
//
//	nav := navigation.New(table, container, window,
//	    navigation.WithBaseRoutes("account"),
//	    navigation.WithAnalytics(sink),
//	)
//	if err := nav.Init(ctx); err != nil {
//	    return err
//	}
//
// Handlers render into the page and then call view.Loaded(node) so that
// anchors in the new content are intercepted too.
//
// A Controller is not safe for concurrent use. Events must be delivered one
// at a time, in the order the host produces them.
package navigation
