// Package router implements the route matcher used by the navigation
// controller.
//
// The matcher is deliberately simple: routes are tried in the order they were
// registered and the first structural match wins. There is no tree and no
// specificity ranking.
//
// # Patterns
//
// A route key is a "/"-separated list of segments. A segment is either a
// literal or a placeholder:
//
//	{accountNumber}/order/{orderNumber}
//
// A placeholder is recognised by its leading shape: "{", zero or more word
// characters, "}". Anything after the closing brace is tolerated and becomes
// part of the variable name, so "{id}x" captures into "idx".
//
// # Base Routes
//
// An application may be mounted under one or more base routes. Before
// matching, the first base route (in declaration order) that occurs anywhere
// in the path is removed from it, first occurrence only:
//
//	bases := router.NewBaseRoutes("nicolas/cage")
//	// "/nicolas/cage/is/awesome" matches the key "is/awesome"
//
// The default base route "/" simply drops the first slash.
//
// # Segment Comparison
//
// Path and route segments are compared by index. Extra path segments beyond
// the route's length are ignored; a route longer than the path fails on the
// first literal with no counterpart and leaves unmatched placeholders absent
// from the extracted Variables.
//
// Both behaviours can be tightened per table with WithAnchoredBase and
// WithStrictSegmentCount.
//
// # Usage
//
//	table := router.NewTable[Handler]()
//	table.Add("{accountNumber}/order/{orderNumber}", showOrder)
//
//	match, ok := table.Resolve("/account/23905/order/gtm679", router.NewBaseRoutes("account"))
//	if ok {
//	    // match.Route == "{accountNumber}/order/{orderNumber}"
//	    // match.Variables["orderNumber"] == "gtm679"
//	}
package router
