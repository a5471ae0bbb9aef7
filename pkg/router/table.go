package router

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/spanav/pkg/routepath"
)

// ErrDuplicateRoute is returned when a route key is registered twice.
var ErrDuplicateRoute = errors.New("duplicate route")

// Option configures a Table.
type Option func(*tableOptions)

type tableOptions struct {
	anchoredBase  bool
	strictSegment bool
	logger        *slog.Logger
}

// WithAnchoredBase only strips a base route that starts the path on a
// segment boundary, instead of its first occurrence anywhere.
func WithAnchoredBase() Option {
	return func(o *tableOptions) {
		o.anchoredBase = true
	}
}

// WithStrictSegmentCount rejects paths whose segment count differs from the
// route's.
func WithStrictSegmentCount() Option {
	return func(o *tableOptions) {
		o.strictSegment = true
	}
}

// WithLogger sets the logger used for registration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *tableOptions) {
		o.logger = logger
	}
}

// Match is the result of resolving a path against a table.
type Match struct {
	// Route is the matched route key as registered.
	Route string

	// BaseRoute is the base route removed from the path, if any.
	BaseRoute string

	// Path is the path left after base route stripping.
	Path string

	// Variables are the captured placeholder values.
	Variables Variables
}

type entry[H any] struct {
	pattern Pattern
	handler H
}

// Table is an ordered route table. Registration order decides which route
// wins when several could match.
//
// A Table is not safe for concurrent registration; resolving from several
// goroutines after registration is safe.
type Table[H any] struct {
	entries []entry[H]
	index   map[string]int
	opts    tableOptions
}

// NewTable creates an empty table.
func NewTable[H any](opts ...Option) *Table[H] {
	o := tableOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Table[H]{
		index: make(map[string]int),
		opts:  o,
	}
}

// Add registers handler under key. Keys must be unique.
func (t *Table[H]) Add(key string, handler H) error {
	if _, exists := t.index[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, key)
	}

	p := ParsePattern(key)
	if p.hasUpperLiteral() {
		t.opts.logger.Warn("route literal contains upper case and can never match a lowercased path",
			"route", key)
	}

	t.index[key] = len(t.entries)
	t.entries = append(t.entries, entry[H]{pattern: p, handler: handler})
	return nil
}

// MustAdd is like Add but panics on error. It is meant for static tables
// built at program start.
func (t *Table[H]) MustAdd(key string, handler H) *Table[H] {
	if err := t.Add(key, handler); err != nil {
		panic(err)
	}
	return t
}

// Handler returns the handler registered for key.
func (t *Table[H]) Handler(key string) (H, bool) {
	i, ok := t.index[key]
	if !ok {
		var zero H
		return zero, false
	}
	return t.entries[i].handler, true
}

// Pattern returns the parsed pattern registered for key.
func (t *Table[H]) Pattern(key string) (Pattern, bool) {
	i, ok := t.index[key]
	if !ok {
		return Pattern{}, false
	}
	return t.entries[i].pattern, true
}

// Patterns returns all patterns in registration order.
func (t *Table[H]) Patterns() []Pattern {
	out := make([]Pattern, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.pattern
	}
	return out
}

// Len returns the number of registered routes.
func (t *Table[H]) Len() int {
	return len(t.entries)
}

// strip applies the table's base route policy.
func (t *Table[H]) strip(path string, bases BaseRoutes) (base, rest string, ok bool) {
	if t.opts.anchoredBase {
		return bases.StripAnchored(path)
	}
	return bases.Strip(path)
}

// Resolve finds the first route matching path. The path must already be
// lowercased by the caller.
func (t *Table[H]) Resolve(path string, bases BaseRoutes) (Match, bool) {
	base, rest, _ := t.strip(path, bases)
	segments := routepath.Segments(rest)

	for _, e := range t.entries {
		if e.pattern.Match(segments, t.opts.strictSegment) {
			return Match{
				Route:     e.pattern.Key(),
				BaseRoute: base,
				Path:      rest,
				Variables: e.pattern.Extract(segments),
			}, true
		}
	}
	return Match{BaseRoute: base, Path: rest}, false
}

// Extract strips path with the table's policy and extracts the variables
// declared by route. It returns nil when route is not registered.
func (t *Table[H]) Extract(path, route string, bases BaseRoutes) Variables {
	p, ok := t.Pattern(route)
	if !ok {
		return nil
	}
	_, rest, _ := t.strip(path, bases)
	return p.Extract(routepath.Segments(rest))
}
