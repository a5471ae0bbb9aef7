package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spanav/internal/errors"
	"github.com/vango-dev/spanav/pkg/navigation"
)

// resolveResult is the JSON output of the resolve command.
type resolveResult struct {
	Route     string            `json:"route"`
	BaseRoute string            `json:"baseRoute"`
	Variables map[string]string `json:"variables"`
	Query     string            `json:"query"`
	URL       string            `json:"url"`
}

func resolveCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <url|path>",
		Short: "Resolve a location against the route table",
		Long: `Resolve a URL or path the way the navigation controller does and print
the matched route, base route, variables and query string.

Examples:
  spanav resolve /account/23905/order/GTM679
  spanav resolve "https://shop.example.com/account/orders?id=130342"
  spanav resolve --json /account/23905`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			table, err := buildTable(cfg, slog.Default())
			if err != nil {
				return err
			}

			loc, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			state, err := navigation.Resolve(loc, table, cfg.BaseRouteSet())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resolveResult{
					Route:     state.Route,
					BaseRoute: state.BaseRoute,
					Variables: state.Variables,
					Query:     state.Query,
					URL:       state.URL,
				})
			}

			fmt.Fprintf(out, "Route:      %q\n", state.Route)
			fmt.Fprintf(out, "Base route: %q\n", state.BaseRoute)
			fmt.Fprintf(out, "Query:      %q\n", state.Query)
			fmt.Fprintf(out, "URL:        %s\n", state.URL)
			if len(state.Variables) > 0 {
				fmt.Fprintln(out, "Variables:")
				names := make([]string, 0, len(state.Variables))
				for name := range state.Variables {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s = %q\n", name, state.Variables[name])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

// parseTarget accepts an absolute URL or a path with optional query.
func parseTarget(arg string) (navigation.Location, error) {
	if strings.Contains(arg, "://") {
		loc, err := navigation.ParseLocation(arg)
		if err != nil {
			return navigation.Location{}, errors.New("N150").WithDetail(err.Error()).Wrap(err)
		}
		return loc, nil
	}
	return navigation.LocationFromPath(arg), nil
}
