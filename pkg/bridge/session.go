package bridge

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	spanerrors "github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/dom"
	"github.com/vango-dev/spanav/pkg/navigation"
)

// session is one connected browser.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu      sync.Mutex
	writeTimeout time.Duration

	doc    *dom.Document
	window *window
	nav    *navigation.Controller
}

// Clear implements navigation.RenderTarget.
func (s *session) Clear() {
	s.doc.Reset()
	if err := s.send(Frame{Type: FrameClear}); err != nil {
		s.logger.Debug("clear frame not sent", "error", err)
	}
}

func (s *session) send(f Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// sendError reports err to the client.
func (s *session) sendError(err error) {
	f := Frame{Type: FrameError, Error: err.Error(), Code: spanerrors.Code(err)}
	if sendErr := s.send(f); sendErr != nil {
		s.logger.Debug("error frame not sent", "error", sendErr)
	}
}

// readLoop handles frames until the connection closes or ctx is done.
func (s *session) readLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(err)
			continue
		}
		s.handle(ctx, frame)
	}
}

func (s *session) handle(ctx context.Context, f Frame) {
	switch f.Type {
	case FramePopState:
		if err := s.window.popState(f.Href); err != nil {
			s.logger.Warn("popstate rejected", "href", f.Href, "error", err)
			s.sendError(spanerrors.New("N004").WithDetail(err.Error()).Wrap(err))
		}

	case FrameClick:
		s.handleClick(f)

	case FrameHello:
		s.sendError(spanerrors.New("N040").WithDetail("duplicate hello"))
	}
}

func (s *session) handleClick(f Frame) {
	ev := &dom.MouseEvent{
		Button: f.Button,
		Ctrl:   f.Ctrl,
		Meta:   f.Meta,
		Shift:  f.Shift,
		Alt:    f.Alt,
	}
	if err := s.doc.Dispatch(f.Target, ev); err != nil {
		s.sendError(spanerrors.New("N041").WithDetail(f.Target).Wrap(err))
		return
	}
	if ev.DefaultPrevented() {
		return
	}

	// Not an in-app navigation: let the browser follow the link.
	anchor := dom.Closest(ev.Target, "a")
	if anchor == nil {
		return
	}
	if href, ok := anchor.Attr("href"); ok && !dom.IsNewTabClick(ev) && !opensElsewhere(anchor, ev) {
		if err := s.send(Frame{Type: FrameFollow, Href: href}); err != nil {
			s.logger.Debug("follow frame not sent", "error", err)
		}
	}
}

// opensElsewhere reports whether the browser would not simply load the
// anchor in the current tab: a named target, a download or an Alt-click.
func opensElsewhere(anchor dom.Element, ev *dom.MouseEvent) bool {
	if ev.Alt {
		return true
	}
	if _, ok := anchor.Attr("download"); ok {
		return true
	}
	target, _ := anchor.Attr("target")
	return target != "" && !strings.EqualFold(target, "_self")
}

// init resolves the first location and reports failures to the client.
func (s *session) init(ctx context.Context) {
	if err := s.nav.Init(ctx); err != nil {
		s.logger.Error("navigation init failed", "href", s.window.loc.Href, "error", err)
		s.sendError(err)
	}
}
