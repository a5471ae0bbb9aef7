// Package bridge runs a navigation controller on the server for a browser
// connected over a WebSocket.
//
// The browser loads a small client script that forwards its location and
// link clicks as JSON frames. Each connection gets its own Controller; its
// Window sends history and scroll commands back, its render target clears
// the page and handlers render HTML fragments through a Page:
//
//	table := navigation.NewTable()
//	table.MustAdd("{accountNumber}", func(vars router.Variables, q string, view *navigation.View, route string) {
//	    page, _ := bridge.PageFrom(view)
//	    page.Render("<h1>Account " + html.EscapeString(vars["accountNumber"]) + "</h1>")
//	})
//
//	srv := bridge.NewServer(table, bridge.WithBaseRoutes("account"))
//	mux.Handle("/_spanav/ws", srv)
//	mux.HandleFunc("/_spanav/client.js", srv.ServeClient)
//
// # Frames
//
// The client sends hello (on load), popstate and click frames. The server
// answers with push, replace, clear, render, scroll, follow and error
// frames. Frames from one connection are handled one at a time in arrival
// order.
package bridge
