package main

import (
	"html/template"
	"log/slog"
	"strings"

	"github.com/vango-dev/spanav/internal/config"
	"github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/bridge"
	"github.com/vango-dev/spanav/pkg/navigation"
	"github.com/vango-dev/spanav/pkg/router"
)

// viewData is what route view templates are executed with.
type viewData struct {
	Vars  router.Variables
	Query string
	Route string
}

// buildTable turns the configured routes into a route table whose handlers
// render the route views through the bridge.
func buildTable(cfg *config.Config, logger *slog.Logger) (*navigation.Table, error) {
	table := navigation.NewTable(append(cfg.RouterOptions(), router.WithLogger(logger))...)
	for i, r := range cfg.Routes {
		tmpl, err := template.New(r.Pattern).Parse(r.View)
		if err != nil {
			return nil, errors.New("N101").
				WithDetailf("routes[%d] (%q): %v", i, r.Pattern, err).
				Wrap(err)
		}
		if err := table.Add(r.Pattern, viewHandler(tmpl, logger)); err != nil {
			return nil, errors.New("N100").WithDetail(err.Error()).Wrap(err)
		}
	}
	return table, nil
}

func viewHandler(tmpl *template.Template, logger *slog.Logger) navigation.Handler {
	return func(vars router.Variables, query string, view *navigation.View, route string) {
		page, ok := bridge.PageFrom(view)
		if !ok {
			return
		}

		var b strings.Builder
		if err := tmpl.Execute(&b, viewData{Vars: vars, Query: query, Route: route}); err != nil {
			logger.Error("view render failed", "route", route, "error", err)
			return
		}
		if err := page.Render(b.String()); err != nil {
			logger.Error("page render failed", "route", route, "error", err)
		}
	}
}
