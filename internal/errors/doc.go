// Package errors provides structured, actionable errors for spanav.
//
// Every failure the navigation controller, the bridge or the CLI can surface
// has a code (e.g. "N001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// Errors wrap the package-level sentinel they stand for, so callers keep using
// errors.Is:
//
//	err := errors.New("N001").Wrap(navigation.ErrNoMatchingRoute)
//	errors.Is(err, navigation.ErrNoMatchingRoute) // true
//
// # Error Categories
//
//   - runtime: navigation failures (no route, no render target, re-entry)
//   - protocol: bridge frame errors
//   - route: route table definition errors
//   - config: spanav.json errors
//   - cli: command line usage errors
//
// # Formatting
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR N001: No valid route found
//	//
//	//   No declared route matches "/hungry/hippos" after base route stripping.
//	//
//	//   Hint: Add a route for the path or a base route that strips its prefix
//	//
//	//   Learn more: https://spanav.dev/docs/errors/N001
package errors
