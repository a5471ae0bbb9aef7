package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	spanerrors "github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/analytics"
	"github.com/vango-dev/spanav/pkg/dom"
	"github.com/vango-dev/spanav/pkg/navigation"
)

// Defaults for Server settings.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultMaxMessageSize   = 64 * 1024
)

// Option configures a Server.
type Option func(*Server)

// WithBaseRoutes sets the base routes of every connection's controller.
func WithBaseRoutes(bases ...string) Option {
	return func(s *Server) {
		s.bases = bases
	}
}

// WithAnalytics reports every connection's page views to sink.
func WithAnalytics(sink analytics.Sink) Option {
	return func(s *Server) {
		s.sink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCheckOrigin sets the WebSocket origin check. The default accepts
// only same-origin upgrades.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// WithHandshakeTimeout bounds the wait for the hello frame.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.handshakeTimeout = d
	}
}

// WithMaxMessageSize limits the size of client frames.
func WithMaxMessageSize(n int64) Option {
	return func(s *Server) {
		s.maxMessageSize = n
	}
}

// WithControllerOptions adds options to every connection's controller.
func WithControllerOptions(opts ...navigation.Option) Option {
	return func(s *Server) {
		s.navOpts = append(s.navOpts, opts...)
	}
}

// Server accepts bridge connections.
type Server struct {
	table            *navigation.Table
	upgrader         websocket.Upgrader
	bases            []string
	sink             analytics.Sink
	navOpts          []navigation.Option
	logger           *slog.Logger
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	maxMessageSize   int64

	sessions atomic.Int64
}

// NewServer creates a server resolving against table.
func NewServer(table *navigation.Table, opts ...Option) *Server {
	s := &Server{
		table: table,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		handshakeTimeout: DefaultHandshakeTimeout,
		writeTimeout:     DefaultWriteTimeout,
		maxMessageSize:   DefaultMaxMessageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "bridge")
	}
	return s
}

// Sessions returns the number of open connections.
func (s *Server) Sessions() int {
	return int(s.sessions.Load())
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))

	sess := &session{
		conn:         conn,
		logger:       s.logger,
		writeTimeout: s.writeTimeout,
		doc:          dom.NewDocument(),
	}

	// Wait for hello
	_, msg, err := conn.ReadMessage()
	if err != nil {
		s.logger.Error("handshake read failed", "error", err)
		return
	}
	hello, err := DecodeFrame(msg)
	if err == nil && hello.Type != FrameHello {
		err = spanerrors.New("N042").WithDetailf("got %q", hello.Type)
	}
	if err != nil {
		s.logger.Warn("handshake rejected", "error", err)
		sess.sendError(err)
		return
	}
	loc, err := parseClientLocation(hello.Href)
	if err != nil {
		s.logger.Warn("handshake location rejected", "href", hello.Href, "error", err)
		sess.sendError(spanerrors.New("N004").WithDetail(err.Error()).Wrap(err))
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess.logger = s.logger.With("origin", loc.Origin)
	sess.window = &window{s: sess, loc: loc}

	opts := []navigation.Option{
		navigation.WithLogger(sess.logger),
		navigation.WithContext(ctx),
		navigation.WithErrorHandler(sess.sendError),
		navigation.WithViewHook(func(v *navigation.View) {
			v.SetValue(&Page{s: sess, view: v})
		}),
	}
	if len(s.bases) > 0 {
		opts = append(opts, navigation.WithBaseRoutes(s.bases...))
	}
	if s.sink != nil {
		opts = append(opts, navigation.WithAnalytics(s.sink))
	}
	opts = append(opts, s.navOpts...)
	sess.nav = navigation.New(s.table, sess, sess.window, opts...)

	s.sessions.Add(1)
	defer s.sessions.Add(-1)
	s.logger.Debug("session started", "href", loc.Href)

	sess.init(ctx)
	sess.readLoop(ctx)
}
