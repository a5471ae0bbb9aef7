package navigation

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	spanerrors "github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/analytics"
	"github.com/vango-dev/spanav/pkg/dom"
	"github.com/vango-dev/spanav/pkg/router"
)

const tracerName = "github.com/vango-dev/spanav/pkg/navigation"

// Handler renders a route. It receives the path variables, the lowercased
// query string, the view to report rendered content to and the matched route
// key.
type Handler func(vars router.Variables, query string, view *View, route string)

// Table is a route table of Handlers.
type Table = router.Table[Handler]

// NewTable creates an empty route table.
func NewTable(opts ...router.Option) *Table {
	return router.NewTable[Handler](opts...)
}

// Option configures a Controller.
type Option func(*Controller)

// WithBaseRoutes sets the base routes the application is mounted under.
// The default is the root base route "/".
func WithBaseRoutes(bases ...string) Option {
	return func(c *Controller) {
		c.bases = router.NewBaseRoutes(bases...)
	}
}

// WithAnalytics reports every successful navigation to sink.
func WithAnalytics(sink analytics.Sink) Option {
	return func(c *Controller) {
		c.analytics = sink
	}
}

// WithDocument replaces the DOM helpers used when handling clicks.
func WithDocument(doc Document) Option {
	return func(c *Controller) {
		c.document = doc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTracer sets the tracer. The default comes from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// WithContext sets the context used for navigations triggered by popstate
// events and clicks.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// WithErrorHandler receives the errors of navigations started by popstate
// events and clicks, which have no caller to return them to. They are
// logged either way.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}

// WithViewHook runs fn on every new View before it reaches the handler.
func WithViewHook(fn func(*View)) Option {
	return func(c *Controller) {
		c.viewHooks = append(c.viewHooks, fn)
	}
}

// Controller resolves the current location and runs the matching handler.
type Controller struct {
	table     *Table
	target    RenderTarget
	window    Window
	bases     router.BaseRoutes
	analytics analytics.Sink
	document  Document
	logger    *slog.Logger
	tracer    trace.Tracer
	ctx       context.Context
	viewHooks []func(*View)
	onError   func(error)

	state     State
	resolved  bool
	inHandler bool
}

// New creates a controller and subscribes it to the window's popstate
// events. Nothing is resolved until Init is called.
func New(table *Table, target RenderTarget, window Window, opts ...Option) *Controller {
	c := &Controller{
		table:    table,
		target:   target,
		window:   window,
		bases:    router.NewBaseRoutes(),
		document: domDocument{},
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "navigation")
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	window.OnPopState(c.handlePopState)
	return c
}

// Init resolves the current location and runs its handler.
//
// It fails when no route matches, when the controller has no render target
// and when called from inside a handler. On failure the previous state is
// kept.
func (c *Controller) Init(ctx context.Context) (err error) {
	if c.inHandler {
		return spanerrors.New("N003").Wrap(ErrReentrantInit)
	}

	loc := c.window.Location()
	ctx, span := c.tracer.Start(ctx, "navigation.Init",
		trace.WithAttributes(attribute.String("spanav.path", loc.Pathname)))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	state, err := Resolve(loc, c.table, c.bases)
	if err != nil {
		return err
	}
	handler, _ := c.table.Handler(state.Route)
	if handler == nil {
		return spanerrors.New("N001").
			WithDetailf("route %q has no handler", state.Route).
			Wrap(ErrNoMatchingRoute)
	}
	if c.target == nil {
		return spanerrors.New("N002").Wrap(ErrMissingRenderTarget)
	}

	c.state = state
	c.resolved = true
	span.SetAttributes(
		attribute.String("spanav.route", state.Route),
		attribute.String("spanav.base_route", state.BaseRoute),
	)

	c.target.Clear()
	c.runHandler(handler, state)

	if c.analytics != nil {
		event := analytics.PageEvent{
			Name:       state.Route,
			Properties: analytics.Properties{URL: state.URL},
		}
		if err := c.analytics.Page(ctx, event); err != nil {
			c.logger.Warn("analytics page failed", "route", state.Route, "error", err)
		}
	}

	c.logger.Debug("navigated",
		"route", state.Route,
		"base_route", state.BaseRoute,
		"url", state.URL)
	return nil
}

func (c *Controller) runHandler(handler Handler, state State) {
	view := NewView()
	view.OnViewLoaded(c.SetupView)
	for _, fn := range c.viewHooks {
		fn(view)
	}

	c.inHandler = true
	defer func() { c.inHandler = false }()
	handler(state.Variables.Clone(), state.Query, view, state.Route)
}

// Navigate moves to href as if an intercepted link had been clicked: the
// history is updated, the new location resolved and the viewport scrolled to
// the top.
func (c *Controller) Navigate(ctx context.Context, href string, opts ...NavigateOption) error {
	if c.inHandler {
		return spanerrors.New("N003").Wrap(ErrReentrantInit)
	}
	return c.follow(ctx, href, newNavigateOptions(opts))
}

func (c *Controller) follow(ctx context.Context, href string, options NavigateOptions) error {
	target, err := options.buildURL(href)
	if err != nil {
		return spanerrors.New("N004").WithDetail(err.Error())
	}

	if options.Replace {
		err = c.window.ReplaceState(target)
	} else {
		err = c.window.PushState(target)
	}
	if err != nil {
		return spanerrors.New("N005").WithDetailf("href %q", target).Wrap(err)
	}

	if err := c.Init(ctx); err != nil {
		return err
	}
	if options.Scroll {
		c.window.ScrollTo(0, 0)
	}
	return nil
}

// SetupView intercepts clicks on every anchor below node. Only anchors
// present at call time are wired; call it again for content rendered later.
func (c *Controller) SetupView(node dom.Node) {
	if node == nil {
		return
	}
	for _, a := range node.QueryAll("a") {
		a.OnClick(c.HandleClick)
	}
}

// HandleClick intercepts ev when it targets an in-app route. Intercepted
// clicks have their default prevented; all others are left alone.
func (c *Controller) HandleClick(ev *dom.MouseEvent) {
	if ev == nil || ev.DefaultPrevented() {
		return
	}

	click := Click{NewTab: c.document.IsNewTabClick(ev)}
	if anchor := c.document.Closest(ev.Target, "a"); anchor != nil {
		click.Href, click.HasAnchor = anchor.Attr("href")
	}

	href, ok := Intercept(click, c.window.Location().Origin, c.table, c.bases)
	if !ok {
		return
	}

	ev.PreventDefault()
	if c.inHandler {
		c.logger.Warn("click ignored while a route handler is running", "href", href)
		return
	}
	if err := c.follow(c.ctx, href, newNavigateOptions(nil)); err != nil {
		c.logger.Error("link navigation failed", "href", href, "error", err)
		c.reportError(err)
	}
}

func (c *Controller) handlePopState(ev *PopStateEvent) {
	ev.PreventDefault()
	if err := c.Init(c.ctx); err != nil {
		c.logger.Error("popstate navigation failed", "href", ev.Href, "error", err)
		c.reportError(err)
	}
}

func (c *Controller) reportError(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

// Route returns the current route key, or "" before the first resolve.
func (c *Controller) Route() string {
	return c.state.Route
}

// BaseRoute returns the base route matched by the most recent resolve.
func (c *Controller) BaseRoute() string {
	return c.state.BaseRoute
}

// State returns a copy of the current state. ok is false before the first
// successful resolve.
func (c *Controller) State() (state State, ok bool) {
	return c.state.clone(), c.resolved
}
