package main

import (
	"html/template"
	"net/http"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<div id="{{.RootID}}"></div>
<script src="/_spanav/client.js" data-root="{{.Root}}" data-endpoint="/_spanav/ws"></script>
</body>
</html>
`))

type shellData struct {
	Title  string
	Root   string
	RootID string
}

// shellHandler serves the application shell for every page path so that
// deep links load the client, which then asks the bridge to render.
func shellHandler(data shellData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if err := shellTemplate.Execute(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
