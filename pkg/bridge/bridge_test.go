package bridge

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/spanav/pkg/analytics"
	"github.com/vango-dev/spanav/pkg/navigation"
	"github.com/vango-dev/spanav/pkg/router"
)

const pageOrigin = "http://shop.test"

type pageSpy struct {
	events chan analytics.PageEvent
}

func (s *pageSpy) Page(_ context.Context, e analytics.PageEvent) error {
	s.events <- e
	return nil
}

func render(t *testing.T, fragment string) navigation.Handler {
	return func(_ router.Variables, _ string, view *navigation.View, _ string) {
		page, ok := PageFrom(view)
		if !assert.True(t, ok, "view has no page") {
			return
		}
		assert.NoError(t, page.Render(fragment))
	}
}

func testTable(t *testing.T) *navigation.Table {
	return navigation.NewTable().
		MustAdd("", render(t, `<nav><a href="/orders">Orders</a> <a href="/help">Help</a> <a href="#top">Top</a> <a href="/report.pdf" download>Report</a> <a href="/help" target="_blank">Help</a> <a href="/contact" target="_self">Contact</a></nav>`)).
		MustAdd("orders", render(t, `<h1>Orders</h1><a href="/">Home</a>`)).
		MustAdd("{accountNumber}/order/{orderNumber}", func(vars router.Variables, _ string, view *navigation.View, _ string) {
			page, _ := PageFrom(view)
			assert.NoError(t, page.Render("<p>"+vars["orderNumber"]+"</p>"))
		})
}

func startServer(t *testing.T, opts ...Option) (*Server, *websocket.Conn) {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	srv := NewServer(testTable(t), opts...)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func write(t *testing.T, conn *websocket.Conn, f Frame) {
	t.Helper()
	data, err := f.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func read(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expect(t *testing.T, conn *websocket.Conn, types ...FrameType) []Frame {
	t.Helper()
	frames := make([]Frame, len(types))
	for i, want := range types {
		frames[i] = read(t, conn)
		require.Equal(t, want, frames[i].Type, "frame %d: %+v", i, frames[i])
	}
	return frames
}

func TestBridgeRoundTrip(t *testing.T) {
	spy := &pageSpy{events: make(chan analytics.PageEvent, 8)}
	srv, conn := startServer(t, WithAnalytics(spy))

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/"})
	frames := expect(t, conn, FrameClear, FrameRender)
	assert.Contains(t, frames[1].HTML, `<a href="/orders" data-nav-id="n2">Orders</a>`)
	assert.Equal(t, "", (<-spy.events).Name)
	assert.Equal(t, 1, srv.Sessions())

	write(t, conn, Frame{Type: FrameClick, Target: "n2"})
	frames = expect(t, conn, FramePush, FrameClear, FrameRender, FrameScroll)
	assert.Equal(t, pageOrigin+"/orders", frames[0].Href)
	assert.Contains(t, frames[2].HTML, "<h1")
	assert.Equal(t, 0, frames[3].X)
	assert.Equal(t, 0, frames[3].Y)

	ev := <-spy.events
	assert.Equal(t, "orders", ev.Name)
	assert.Equal(t, "/orders", ev.Properties.URL)

	write(t, conn, Frame{Type: FramePopState, Href: pageOrigin + "/"})
	expect(t, conn, FrameClear, FrameRender)
	assert.Equal(t, "", (<-spy.events).Name)
}

func TestBridgeBaseRoutes(t *testing.T) {
	_, conn := startServer(t, WithBaseRoutes("account"))

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/account/23905/order/GTM679"})
	frames := expect(t, conn, FrameClear, FrameRender)
	assert.Contains(t, frames[1].HTML, "gtm679")
}

func TestBridgeFollowsForeignLinks(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/"})
	expect(t, conn, FrameClear, FrameRender)

	// n3 is /help, which is not a route.
	write(t, conn, Frame{Type: FrameClick, Target: "n3"})
	f := expect(t, conn, FrameFollow)[0]
	assert.Equal(t, "/help", f.Href)

	// n4 is a fragment link.
	write(t, conn, Frame{Type: FrameClick, Target: "n4"})
	f = expect(t, conn, FrameFollow)[0]
	assert.Equal(t, "#top", f.Href)
}

func TestBridgeLeavesOtherTargetsToBrowser(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/"})
	expect(t, conn, FrameClear, FrameRender)

	// n5 has download, n6 has target=_blank and n3 is Alt-clicked. None of
	// them gets a follow frame, so the first frame answers n7 (target=_self).
	write(t, conn, Frame{Type: FrameClick, Target: "n5"})
	write(t, conn, Frame{Type: FrameClick, Target: "n6"})
	write(t, conn, Frame{Type: FrameClick, Target: "n3", Alt: true})
	write(t, conn, Frame{Type: FrameClick, Target: "n7"})

	f := expect(t, conn, FrameFollow)[0]
	assert.Equal(t, "/contact", f.Href)
}

func TestBridgeErrors(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/"})
	expect(t, conn, FrameClear, FrameRender)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Equal(t, "N040", expect(t, conn, FrameError)[0].Code)

	write(t, conn, Frame{Type: FrameClick, Target: "n999"})
	assert.Equal(t, "N041", expect(t, conn, FrameError)[0].Code)

	write(t, conn, Frame{Type: FramePopState, Href: pageOrigin + "/nowhere"})
	assert.Equal(t, "N001", expect(t, conn, FrameError)[0].Code)

	write(t, conn, Frame{Type: FramePopState, Href: pageOrigin + "/a%00b"})
	assert.Equal(t, "N004", expect(t, conn, FrameError)[0].Code)
}

func TestBridgePopStateKeepsOrigin(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/"})
	expect(t, conn, FrameClear, FrameRender)

	write(t, conn, Frame{Type: FramePopState, Href: "http://evil.test/orders"})
	f := expect(t, conn, FrameError)[0]
	assert.Equal(t, "N004", f.Code)
	assert.Contains(t, f.Error, "evil.test")

	// The session is still on the page origin, so a route link is intercepted
	// and pushed there.
	write(t, conn, Frame{Type: FrameClick, Target: "n2"})
	frames := expect(t, conn, FramePush, FrameClear, FrameRender, FrameScroll)
	assert.Equal(t, pageOrigin+"/orders", frames[0].Href)
}

func TestBridgeInitFailure(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameHello, Href: pageOrigin + "/nowhere"})
	f := expect(t, conn, FrameError)[0]
	assert.Equal(t, "N001", f.Code)

	// The connection stays usable.
	write(t, conn, Frame{Type: FramePopState, Href: pageOrigin + "/orders"})
	expect(t, conn, FrameClear, FrameRender)
}

func TestBridgeHandshakeRequiresHello(t *testing.T) {
	_, conn := startServer(t)

	write(t, conn, Frame{Type: FrameClick, Target: "n1"})
	f := expect(t, conn, FrameError)[0]
	assert.Equal(t, "N042", f.Code)

	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "server should close the connection")
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"hello", `{"type":"hello","href":"http://a/"}`, false},
		{"click", `{"type":"click","target":"n1","ctrl":true}`, false},
		{"hello without href", `{"type":"hello"}`, true},
		{"click without target", `{"type":"click"}`, true},
		{"server frame", `{"type":"render","html":"x"}`, true},
		{"not json", `nope`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServeClient(t *testing.T) {
	srv := NewServer(navigation.NewTable())

	rec := httptest.NewRecorder()
	srv.ServeClient(rec, httptest.NewRequest(http.MethodGet, "/_spanav/client.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `type: "hello"`)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/_spanav/client.js", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	srv.ServeClient(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeClient(rec, httptest.NewRequest(http.MethodPost, "/_spanav/client.js", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
